// Package graph is the query compiler's directed join graph: which
// table must be present before which, derived from the foreign-key
// dictionary as the selection tree is walked.
//
// # Graph structure
//
// Graph tracks, per table, the set of tables it depends on (must be
// joined in before it) and the set of tables that depend on it:
//
//	g := graph.New()
//	g.AddDependency("lender", "borrower", graph.JoinCondition{...})
//
// # Topological ordering
//
// TopoOrder returns tables in an order where every dependency precedes
// its dependent, used to emit JOIN clauses in a valid sequence. A cycle
// in the dependency relation is rejected — spec.md §8's "join
// acyclicity" law.
package graph
