package graph

import (
	"fmt"
	"sort"
)

// JoinCondition names the column pair a JOIN clause equates: the
// referencing table's foreign-key column against the referenced
// table's primary-key column.
type JoinCondition struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
}

// Graph is the directed join graph of spec.md §3/§8: tables related by
// "must be present before" dependency edges.
type Graph struct {
	dependencies map[string]map[string]JoinCondition // table -> tables it depends on
	dependents   map[string]map[string]JoinCondition // table -> tables that depend on it
	order        []string                            // insertion order, for determinism
	seen         map[string]bool
}

// New returns an empty join graph.
func New() *Graph {
	return &Graph{
		dependencies: map[string]map[string]JoinCondition{},
		dependents:   map[string]map[string]JoinCondition{},
		seen:         map[string]bool{},
	}
}

func (g *Graph) touch(table string) {
	if !g.seen[table] {
		g.seen[table] = true
		g.order = append(g.order, table)
	}
}

// AddDependency records that table depends on dep (dep must be joined
// in before table), under cond.
func (g *Graph) AddDependency(table, dep string, cond JoinCondition) {
	g.touch(table)
	g.touch(dep)
	if g.dependencies[table] == nil {
		g.dependencies[table] = map[string]JoinCondition{}
	}
	g.dependencies[table][dep] = cond
	if g.dependents[dep] == nil {
		g.dependents[dep] = map[string]JoinCondition{}
	}
	g.dependents[dep][table] = cond
}

// Dependencies returns the tables table depends on.
func (g *Graph) Dependencies(table string) map[string]JoinCondition {
	return g.dependencies[table]
}

// DependentsOf returns the tables that depend on table, keyed by their
// own name, with the JoinCondition that introduced the edge.
func (g *Graph) DependentsOf(table string) map[string]JoinCondition {
	return g.dependents[table]
}

// Tables returns every table touched by the graph, in the order it was
// first referenced.
func (g *Graph) Tables() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

type color int

const (
	white color = iota
	gray
	black
)

// TopoOrder returns tables ordered so every dependency precedes its
// dependent, or an error if the dependency relation contains a cycle
// (spec.md §8's "join acyclicity" law).
func (g *Graph) TopoOrder() ([]string, error) {
	colors := make(map[string]color, len(g.order))
	var out []string

	var visit func(table string, path []string) error
	visit = func(table string, path []string) error {
		switch colors[table] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("graph: cycle detected at table %q (path: %v)", table, append(path, table))
		}
		colors[table] = gray

		deps := make([]string, 0, len(g.dependencies[table]))
		for dep := range g.dependencies[table] {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep, append(path, table)); err != nil {
				return err
			}
		}

		colors[table] = black
		out = append(out, table)
		return nil
	}

	for _, table := range g.order {
		if colors[table] == white {
			if err := visit(table, nil); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
