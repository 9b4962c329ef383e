package querycompiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luizstacio/fuel-indexer/dialect"
	sqlbuilder "github.com/luizstacio/fuel-indexer/dialect/sql"
	"github.com/luizstacio/fuel-indexer/querylanguage"
)

// ToSQL renders q into a dialect-specific SELECT statement and its bind
// arguments, per spec.md §4.5: a JSON-building projection mirroring the
// element sequence, FROM the root table, JOINs in the join graph's
// topological order, and WHERE/ORDER BY/LIMIT/OFFSET from query_params.
func (q *UserQuery) ToSQL(dial dialect.DbDialect) (string, []any, error) {
	order, err := q.Joins.TopoOrder()
	if err != nil {
		return "", nil, err
	}

	projection := q.buildProjection()
	sel := sqlbuilder.Select(dial.Name(), fmt.Sprintf("%s AS %s", projection, quoteIdent(dial, q.RootField)))
	sel.From(dial.TableName(q.Namespace, q.Identifier, q.RootTable))
	sel.As(q.RootTable)

	for _, table := range order {
		if table == q.RootTable {
			continue
		}
		for _, cond := range q.Joins.DependentsOf(table) {
			sel.Join(dial.TableName(q.Namespace, q.Identifier, table), table, sqlbuilder.Raw(fmt.Sprintf(
				"%s = %s",
				rawColumn(fmt.Sprintf("%s.%s", cond.FromTable, cond.FromColumn)),
				rawColumn(fmt.Sprintf("%s.%s", cond.ToTable, cond.ToColumn)),
			)))
			break
		}
	}

	if pred, ok := q.wherePredicate(); ok {
		sel.Where(pred)
	}

	rootParams := q.Params[q.RootTable]
	if rootParams != nil {
		for _, o := range rootParams.Order {
			dir := sqlbuilder.OrderAsc
			if o.Desc {
				dir = sqlbuilder.OrderDesc
			}
			sel.OrderBy(fmt.Sprintf("%s.%s", q.RootTable, o.Field), dir)
		}
		if rootParams.First != nil {
			sel.Limit(*rootParams.First)
		} else if rootParams.Last != nil {
			sel.Limit(*rootParams.Last)
		}
		if rootParams.Offset != nil {
			sel.Offset(*rootParams.Offset)
		}
	}

	stmt, args := sel.Query()
	return stmt, args, nil
}

// wherePredicate ANDs together every table scope's filter predicate.
func (q *UserQuery) wherePredicate() (sqlbuilder.Predicate, bool) {
	var preds []sqlbuilder.Predicate
	for table, params := range q.Params {
		if params.Filter == nil {
			continue
		}
		preds = append(preds, renderPredicate(params.Filter, table))
	}
	if len(preds) == 0 {
		return nil, false
	}
	if len(preds) == 1 {
		return preds[0], true
	}
	return sqlbuilder.And(preds...), true
}

// renderPredicate lowers a querylanguage.P tree into a dialect/sql
// Predicate, the bridge between the interpreted filter algebra and SQL
// text (the two packages don't import each other to avoid a cycle).
func renderPredicate(p querylanguage.P, table string) sqlbuilder.Predicate {
	switch e := p.(type) {
	case *querylanguage.BinaryExpr:
		col := fmt.Sprintf("%s.%s", table, e.Field)
		switch e.Op {
		case querylanguage.OpEq:
			return sqlbuilder.EQ(col, e.Value)
		case querylanguage.OpNe:
			return sqlbuilder.NEQ(col, e.Value)
		case querylanguage.OpLt:
			return sqlbuilder.LT(col, e.Value)
		case querylanguage.OpLe:
			return sqlbuilder.LTE(col, e.Value)
		case querylanguage.OpGt:
			return sqlbuilder.GT(col, e.Value)
		case querylanguage.OpGe:
			return sqlbuilder.GTE(col, e.Value)
		}
	case *querylanguage.NaryExpr:
		col := fmt.Sprintf("%s.%s", table, e.Field)
		switch e.Op {
		case querylanguage.OpIn:
			return sqlbuilder.In(col, e.Values...)
		case querylanguage.OpBetween:
			return sqlbuilder.Between(col, e.Values[0], e.Values[1])
		}
	case *querylanguage.CallExpr:
		switch e.Name {
		case "like":
			// e.Args is [field, quoted-pattern]; pattern arrived pre-quoted
			// for String() rendering, so re-derive the raw value.
			col := fmt.Sprintf("%s.%s", table, e.Args[0])
			pattern, err := strconv.Unquote(e.Args[1])
			if err != nil {
				pattern = e.Args[1]
			}
			return sqlbuilder.Like(col, pattern)
		case "has":
			col := fmt.Sprintf("%s.%s", table, e.Args[0])
			return sqlbuilder.NotNull(col)
		}
	case *querylanguage.UnaryExpr:
		return sqlbuilder.Not(renderPredicate(e.Inner, table))
	case *querylanguage.NaryLogicalExpr:
		preds := make([]sqlbuilder.Predicate, len(e.Preds))
		for i, sub := range e.Preds {
			preds[i] = renderPredicate(sub, table)
		}
		if e.Op == "&&" {
			return sqlbuilder.And(preds...)
		}
		return sqlbuilder.Or(preds...)
	}
	return sqlbuilder.Raw("TRUE")
}

// buildProjection walks q.Elements and renders a jsonb_build_object
// expression nesting exactly as the open/close boundaries specify.
func (q *UserQuery) buildProjection() string {
	type frame struct {
		key   string
		parts []string
	}
	stack := []frame{{}}
	for _, el := range q.Elements {
		switch el.Kind {
		case KindObjectOpen:
			stack = append(stack, frame{key: el.Key})
		case KindObjectClose:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			expr := fmt.Sprintf("jsonb_build_object(%s)", strings.Join(top.parts, ", "))
			parent := &stack[len(stack)-1]
			parent.parts = append(parent.parts, sqlStringLiteral(top.key), expr)
		case KindField:
			parent := &stack[len(stack)-1]
			parent.parts = append(parent.parts, sqlStringLiteral(el.Key), rawColumn(el.Value))
		}
	}
	root := stack[0]
	return fmt.Sprintf("jsonb_build_object(%s)", strings.Join(root.parts, ", "))
}

func sqlStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// rawColumn renders a column reference as a double-quoted identifier
// pair, used for projection expressions (not bind-arg positions). It
// accepts both the bare "table.column" shorthand used for join
// conditions and the fully qualified "ns_id.table.column" shape of a
// QueryElement.Value (spec.md §3); only the last two segments matter
// since FROM/JOIN alias every physical table to its bare entity name.
func rawColumn(value string) string {
	parts := strings.Split(value, ".")
	if len(parts) < 2 {
		return strconv.Quote(value)
	}
	table, col := parts[len(parts)-2], parts[len(parts)-1]
	return fmt.Sprintf(`"%s"."%s"`, table, col)
}

func quoteIdent(dial dialect.DbDialect, s string) string {
	return dial.Quote(s)
}
