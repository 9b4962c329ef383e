// Package querylanguage implements the filter-predicate tree the query
// compiler lowers argument literals into: a small boolean-expression
// algebra over field comparisons, combined with and/or/not, that renders
// to a SQL WHERE fragment via the dialect/sql builder's Predicate type.
package querylanguage

import (
	"fmt"
	"strconv"
	"strings"
)

// P is a predicate expression: a leaf field comparison, a call-style
// field test, or a combinator over other predicates.
type P interface {
	String() string
	// Negate returns the logical negation of this predicate.
	Negate() P
}

// Op is one of the recognized filter operator kinds from spec.md §4.5's
// argument/filter lowering vocabulary.
type Op string

const (
	OpEq      Op = "eq"
	OpNe      Op = "ne"
	OpLt      Op = "lt"
	OpLe      Op = "le"
	OpGt      Op = "gt"
	OpGe      Op = "ge"
	OpIn      Op = "in"
	OpLike    Op = "like"
	OpBetween Op = "between"
	OpHas     Op = "has"
)

func (o Op) symbol() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return string(o)
	}
}

// BinaryExpr compares one field against one value with a comparison op.
type BinaryExpr struct {
	Field string
	Op    Op
	Value any
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", b.Field, b.Op.symbol(), renderValue(b.Value))
}

// Negate returns the wrapped negation of the expression.
func (b *BinaryExpr) Negate() P {
	return &UnaryExpr{Op: "!", Inner: b}
}

func renderValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// NaryExpr lowers a filter's `in` / `between` operators, which take more
// than one value.
type NaryExpr struct {
	Field  string
	Op     Op
	Values []any
}

func (n *NaryExpr) String() string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = renderValue(v)
	}
	switch n.Op {
	case OpIn:
		return fmt.Sprintf("%s in [%s]", n.Field, strings.Join(parts, ","))
	case OpBetween:
		return fmt.Sprintf("%s between [%s]", n.Field, strings.Join(parts, ","))
	default:
		return fmt.Sprintf("%s %s [%s]", n.Field, n.Op, strings.Join(parts, ","))
	}
}

// Negate returns the wrapped negation of the expression.
func (n *NaryExpr) Negate() P {
	return &UnaryExpr{Op: "!", Inner: n}
}

// CallExpr renders a function-call-shaped predicate: like(...), has(...).
type CallExpr struct {
	Name string
	Args []string
}

func (c *CallExpr) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(c.Args, ", "))
}

// Negate returns the wrapped negation of the expression.
func (c *CallExpr) Negate() P {
	return &UnaryExpr{Op: "!", Inner: c}
}

// UnaryExpr negates a single inner predicate.
type UnaryExpr struct {
	Op    string
	Inner P
}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("%s(%s)", u.Op, u.Inner.String())
}

// Negate returns the double-negated (re-wrapped) predicate.
func (u *UnaryExpr) Negate() P {
	return &UnaryExpr{Op: "!", Inner: u}
}

// NaryLogicalExpr combines two or more predicates with && or ||.
type NaryLogicalExpr struct {
	Op    string // "&&" or "||"
	Preds []P
}

func (e *NaryLogicalExpr) String() string {
	if len(e.Preds) == 1 {
		return e.Preds[0].String()
	}
	parts := make([]string, len(e.Preds))
	for i, p := range e.Preds {
		parts[i] = p.String()
	}
	sep := fmt.Sprintf(" %s ", e.Op)
	return "(" + strings.Join(parts, sep) + ")"
}

// Negate returns the wrapped negation of the expression.
func (e *NaryLogicalExpr) Negate() P {
	return &UnaryExpr{Op: "!", Inner: e}
}
