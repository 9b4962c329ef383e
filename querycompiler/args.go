package querycompiler

import (
	"fmt"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/querylanguage"
	"github.com/luizstacio/fuel-indexer/queryparser"
)

// lowerArguments accumulates sel's recognized arguments into uq's
// query_params scoped to table, per spec.md §4.5.
func lowerArguments(uq *UserQuery, table string, sel *queryparser.Selection) error {
	if len(sel.Arguments) == 0 {
		return nil
	}
	params := uq.paramsFor(table)

	if raw, ok := sel.Arguments["filter"]; ok {
		p, err := lowerFilter(raw)
		if err != nil {
			return err
		}
		params.Filter = p
	}

	if raw, ok := sel.Arguments["id"]; ok {
		idPred := querylanguage.Eq("id", raw)
		if params.Filter != nil {
			params.Filter = querylanguage.And(params.Filter, idPred)
		} else {
			params.Filter = idPred
		}
	}

	if raw, ok := sel.Arguments["order"]; ok {
		terms, err := lowerOrder(raw)
		if err != nil {
			return err
		}
		params.Order = append(params.Order, terms...)
	}

	if raw, ok := sel.Arguments["first"]; ok {
		n, err := toInt(raw)
		if err != nil {
			return err
		}
		params.First = &n
	}
	if raw, ok := sel.Arguments["last"]; ok {
		n, err := toInt(raw)
		if err != nil {
			return err
		}
		params.Last = &n
	}
	if raw, ok := sel.Arguments["offset"]; ok {
		n, err := toInt(raw)
		if err != nil {
			return err
		}
		params.Offset = &n
	}
	if raw, ok := sel.Arguments["after"]; ok {
		s := fmt.Sprint(raw)
		params.After = &s
	}
	if raw, ok := sel.Arguments["before"]; ok {
		s := fmt.Sprint(raw)
		params.Before = &s
	}

	if params.paginated() && len(params.Order) == 0 {
		return fuelindexer.NewQueryCompileError(fuelindexer.UnorderedPaginatedQuery, "", sel.Name, "")
	}

	return nil
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", "", fmt.Sprint(raw))
	}
}

func lowerOrder(raw any) ([]OrderTerm, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", "", "order")
	}
	terms := make([]OrderTerm, 0, len(m))
	for field, dir := range m {
		s, ok := dir.(string)
		if !ok {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", field, "order")
		}
		terms = append(terms, OrderTerm{Field: field, Desc: s == "desc" || s == "DESC"})
	}
	return terms, nil
}

// lowerFilter converts a parsed filter object literal into a
// querylanguage.P tree. Recognized keys are `and`, `or`, `not`, and
// field names mapping to a single-key operator object
// (`{height: {gt: 100}}`) or a bare value for shorthand equality.
func lowerFilter(raw any) (querylanguage.P, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", "", "filter")
	}
	if len(m) == 0 {
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.NoPredicatesInFilter, "", "", "filter")
	}

	var preds []querylanguage.P
	for key, val := range m {
		switch key {
		case "and", "or":
			items, ok := val.([]any)
			if !ok || len(items) < 2 {
				return nil, fuelindexer.NewQueryCompileError(fuelindexer.MissingPartnerForBinaryLogicalOperator, "", "", key)
			}
			sub := make([]querylanguage.P, 0, len(items))
			for _, it := range items {
				p, err := lowerFilter(it)
				if err != nil {
					return nil, err
				}
				sub = append(sub, p)
			}
			if key == "and" {
				preds = append(preds, querylanguage.And(sub...))
			} else {
				preds = append(preds, querylanguage.Or(sub...))
			}

		case "not":
			p, err := lowerFilter(val)
			if err != nil {
				return nil, err
			}
			if c, ok := p.(*querylanguage.CallExpr); ok && c.Name == "has" {
				return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnsupportedNegation, "", "", "not")
			}
			preds = append(preds, querylanguage.Not(p))

		default:
			opMap, ok := val.(map[string]any)
			if !ok {
				if !isScalarLiteral(val) {
					return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", key, "eq")
				}
				preds = append(preds, querylanguage.Eq(key, val))
				continue
			}
			for op, opVal := range opMap {
				p, err := buildFieldPredicate(key, op, opVal)
				if err != nil {
					return nil, err
				}
				preds = append(preds, p)
			}
		}
	}

	if len(preds) == 0 {
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.NoPredicatesInFilter, "", "", "filter")
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return querylanguage.And(preds...), nil
}

func isScalarLiteral(v any) bool {
	switch v.(type) {
	case string, bool, int64, int, float64:
		return true
	default:
		return false
	}
}

func buildFieldPredicate(field, op string, val any) (querylanguage.P, error) {
	switch op {
	case "eq":
		if !isScalarLiteral(val) {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", field, op)
		}
		return querylanguage.Eq(field, val), nil
	case "ne":
		if !isScalarLiteral(val) {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", field, op)
		}
		return querylanguage.Ne(field, val), nil
	case "lt":
		return querylanguage.Lt(field, val), nil
	case "le":
		return querylanguage.Le(field, val), nil
	case "gt":
		return querylanguage.Gt(field, val), nil
	case "ge":
		return querylanguage.Ge(field, val), nil
	case "like":
		s, ok := val.(string)
		if !ok {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", field, op)
		}
		return querylanguage.Like(field, s), nil
	case "in":
		items, ok := val.([]any)
		if !ok {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", field, op)
		}
		return querylanguage.In(field, items...), nil
	case "between":
		items, ok := val.([]any)
		if !ok || len(items) != 2 {
			return nil, fuelindexer.NewQueryCompileError(fuelindexer.UnableToParseValue, "", field, op)
		}
		return querylanguage.Between(field, items[0], items[1]), nil
	case "has":
		return querylanguage.Has(field), nil
	default:
		return nil, fuelindexer.NewQueryCompileError(fuelindexer.OperationNotSupported, "", field, op)
	}
}
