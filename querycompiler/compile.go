package querycompiler

import (
	"github.com/luizstacio/fuel-indexer/graph"
	"github.com/luizstacio/fuel-indexer/queryparser"
	"github.com/luizstacio/fuel-indexer/schema"
	"github.com/luizstacio/fuel-indexer/schema/store"
)

// Compile lowers a resolved Selections tree into one UserQuery per
// top-level field, per spec.md §4.5.
func Compile(sels *queryparser.Selections, refl *store.Reflection) ([]*UserQuery, error) {
	out := make([]*UserQuery, 0, len(sels.Items))
	for _, top := range sels.Items {
		uq, err := compileOne(top, refl)
		if err != nil {
			return nil, err
		}
		out = append(out, uq)
	}
	return out, nil
}

type pending struct {
	sel    *queryparser.Selection
	parent string
}

// tableNameOf derives a selection's physical table name with
// schema.TableIdent, the same derivation schema.Compile used to name
// the table in DDL, so a query's FROM/JOIN resolves against what was
// actually created.
func tableNameOf(sel *queryparser.Selection) string {
	if sel.EntityType != "" {
		return schema.TableIdent(sel.EntityType)
	}
	return schema.TableIdent(sel.Name)
}

// compileOne runs the work-queue + parent-stack + nested-entity-stack
// walk described in spec.md §4.5 over one top-level selection's
// subtree.
func compileOne(root *queryparser.Selection, refl *store.Reflection) (*UserQuery, error) {
	rootTable := tableNameOf(root)
	uq := newUserQuery(refl.Namespace, refl.Identifier, root.Key(), rootTable)

	if err := lowerArguments(uq, rootTable, root); err != nil {
		return nil, err
	}

	queue := make([]pending, 0, len(root.SubSelections))
	for i := len(root.SubSelections) - 1; i >= 0; i-- {
		queue = append(queue, pending{root.SubSelections[i], rootTable})
	}

	var nested []string
	prevLen := len(queue)

	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if len(queue) < prevLen && len(nested) > 0 && nested[len(nested)-1] != cur.parent {
			uq.Elements = append(uq.Elements, QueryElement{Kind: KindObjectClose})
			nested = nested[:len(nested)-1]
		}
		prevLen = len(queue)

		if cur.sel.IsLeaf() {
			uq.Elements = append(uq.Elements, QueryElement{
				Kind:  KindField,
				Key:   cur.sel.Key(),
				Value: uq.qualify(cur.parent, cur.sel.Name),
			})
			if err := lowerArguments(uq, cur.parent, cur.sel); err != nil {
				return nil, err
			}
			continue
		}

		childTable := tableNameOf(cur.sel)
		if fk, ok := refl.ForeignKey(cur.parent, cur.sel.Name); ok {
			uq.Joins.AddDependency(cur.parent, fk.Table, graph.JoinCondition{
				FromTable: cur.parent, FromColumn: cur.sel.Name,
				ToTable: fk.Table, ToColumn: fk.Column,
			})
			if fk.Table != cur.sel.Name {
				childTable = fk.Table
			}
		}

		if err := lowerArguments(uq, childTable, cur.sel); err != nil {
			return nil, err
		}

		nested = append(nested, childTable)
		uq.Elements = append(uq.Elements, QueryElement{Kind: KindObjectOpen, Key: cur.sel.Key()})

		for i := len(cur.sel.SubSelections) - 1; i >= 0; i-- {
			queue = append(queue, pending{cur.sel.SubSelections[i], childTable})
		}
		prevLen = len(queue)
	}

	for range nested {
		uq.Elements = append(uq.Elements, QueryElement{Kind: KindObjectClose})
	}

	return uq, nil
}
