package querylanguage

// Eq returns a predicate testing field == v.
func Eq(field string, v any) P { return &BinaryExpr{Field: field, Op: OpEq, Value: v} }

// Ne returns a predicate testing field != v.
func Ne(field string, v any) P { return &BinaryExpr{Field: field, Op: OpNe, Value: v} }

// Lt returns a predicate testing field < v.
func Lt(field string, v any) P { return &BinaryExpr{Field: field, Op: OpLt, Value: v} }

// Le returns a predicate testing field <= v.
func Le(field string, v any) P { return &BinaryExpr{Field: field, Op: OpLe, Value: v} }

// Gt returns a predicate testing field > v.
func Gt(field string, v any) P { return &BinaryExpr{Field: field, Op: OpGt, Value: v} }

// Ge returns a predicate testing field >= v.
func Ge(field string, v any) P { return &BinaryExpr{Field: field, Op: OpGe, Value: v} }

// In returns a predicate testing field is one of vs.
func In(field string, vs ...any) P { return &NaryExpr{Field: field, Op: OpIn, Values: vs} }

// Like returns a predicate testing field against a SQL LIKE pattern.
func Like(field, pattern string) P {
	return &CallExpr{Name: "like", Args: []string{field, renderValue(pattern)}}
}

// Between returns a predicate testing lo <= field <= hi.
func Between(field string, lo, hi any) P {
	return &NaryExpr{Field: field, Op: OpBetween, Values: []any{lo, hi}}
}

// Has returns a predicate testing that field (typically a foreign-key
// reference) is set.
func Has(field string) P {
	return &CallExpr{Name: "has", Args: []string{field}}
}

// And combines two or more predicates with logical AND.
func And(ps ...P) P { return &NaryLogicalExpr{Op: "&&", Preds: ps} }

// Or combines two or more predicates with logical OR.
func Or(ps ...P) P { return &NaryLogicalExpr{Op: "||", Preds: ps} }

// Not returns the logical negation of p.
func Not(p P) P { return p.Negate() }
