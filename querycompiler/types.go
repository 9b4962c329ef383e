// Package querycompiler implements the core C5 algorithm of spec.md
// §4.5: lowering a resolved selection tree into one UserQuery per
// top-level field, each carrying an element sequence, a join graph, and
// scoped query parameters, renderable to SQL.
package querycompiler

import (
	"fmt"

	"github.com/luizstacio/fuel-indexer/graph"
	"github.com/luizstacio/fuel-indexer/querylanguage"
)

// ElementKind tags one entry of a UserQuery's element sequence.
type ElementKind int

const (
	KindField ElementKind = iota
	KindObjectOpen
	KindObjectClose
)

// QueryElement is one step of the flattened, document-ordered selection
// walk: a leaf field, or an object scope boundary.
type QueryElement struct {
	Kind  ElementKind
	Key   string
	Value string
}

// OrderTerm is one ORDER BY entry lowered from an `order` argument.
type OrderTerm struct {
	Field string
	Desc  bool
}

// Params holds the query_params accumulated for one table scope:
// filter predicate, ordering, and pagination bounds.
type Params struct {
	Filter querylanguage.P
	Order  []OrderTerm
	First  *int
	Last   *int
	Offset *int
	After  *string
	Before *string
}

func (p *Params) paginated() bool {
	return p.First != nil || p.Last != nil || p.Offset != nil || p.After != nil || p.Before != nil
}

// UserQuery is the compiled, SQL-renderable intermediate representation
// of spec.md's GLOSSARY: one per top-level selected field. Namespace
// and Identifier are the indexer identity tuple every element's Value
// and every rendered table reference is qualified by, per spec.md §3's
// "namespace_identifier, entity_name, optional top-level alias".
type UserQuery struct {
	Namespace  string
	Identifier string
	RootField  string
	RootTable  string
	Elements   []QueryElement
	Joins      *graph.Graph
	// Params is keyed by table name, as schema.TableIdent derives it.
	Params map[string]*Params
}

func newUserQuery(namespace, identifier, rootField, rootTable string) *UserQuery {
	return &UserQuery{
		Namespace:  namespace,
		Identifier: identifier,
		RootField:  rootField,
		RootTable:  rootTable,
		Joins:      graph.New(),
		Params:     map[string]*Params{},
	}
}

// qualify renders the fully qualified column value spec.md §3 requires
// of QueryElement.Value: "<ns>_<id>.<entity>.<field>".
func (q *UserQuery) qualify(table, field string) string {
	return fmt.Sprintf("%s_%s.%s.%s", q.Namespace, q.Identifier, table, field)
}

func (q *UserQuery) paramsFor(table string) *Params {
	p, ok := q.Params[table]
	if !ok {
		p = &Params{}
		q.Params[table] = p
	}
	return p
}
