package querylanguage_test

import (
	"strconv"
	"testing"

	"github.com/luizstacio/fuel-indexer/querylanguage"

	"github.com/stretchr/testify/assert"
)

func TestPString(t *testing.T) {
	tests := []struct {
		P querylanguage.P
		S string
	}{
		{
			P: querylanguage.And(
				querylanguage.Eq("name", "a8m"),
				querylanguage.In("org", "fb", "ent"),
			),
			S: `(name == "a8m" && org in ["fb","ent"])`,
		},
		{
			P: querylanguage.Or(
				querylanguage.Not(querylanguage.Eq("name", "mashraki")),
				querylanguage.In("org", "fb", "ent"),
			),
			S: `(!(name == "mashraki") || org in ["fb","ent"])`,
		},
		{
			P: querylanguage.And(
				querylanguage.Gt("age", 30),
				querylanguage.Has("owner"),
			),
			S: `(age > 30 && has(owner))`,
		},
		{
			P: querylanguage.Not(querylanguage.Lt("score", 32.23)),
			S: `!(score < 32.23)`,
		},
		{
			P: querylanguage.Or(
				querylanguage.Ne("id", 1),
				querylanguage.Like("name", "%admin")),
			S: `(id != 1 || like(name, "%admin"))`,
		},
		{
			P: querylanguage.Between("block_height", 1, 100),
			S: `block_height between [1,100]`,
		},
	}
	for i := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			s := tests[i].P.String()
			assert.Equal(t, tests[i].S, s)
		})
	}
}

func TestComparisonOperators(t *testing.T) {
	tests := []struct {
		name string
		P    querylanguage.P
		S    string
	}{
		{name: "Ne", P: querylanguage.Ne("status", "active"), S: `status != "active"`},
		{name: "Ge", P: querylanguage.Ge("age", 18), S: `age >= 18`},
		{name: "Le", P: querylanguage.Le("price", 100), S: `price <= 100`},
		{name: "Has", P: querylanguage.Has("owner"), S: `has(owner)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.S, tt.P.String())
		})
	}
}

func TestNaryExpressions(t *testing.T) {
	p := querylanguage.And(
		querylanguage.Eq("a", 1),
		querylanguage.Eq("b", 2),
		querylanguage.Eq("c", 3),
	)
	assert.Equal(t, `(a == 1 && b == 2 && c == 3)`, p.String())

	p = querylanguage.Or(
		querylanguage.Eq("x", 1),
		querylanguage.Eq("y", 2),
		querylanguage.Eq("z", 3),
	)
	assert.Equal(t, `(x == 1 || y == 2 || z == 3)`, p.String())
}

func TestNegate(t *testing.T) {
	p := querylanguage.Eq("name", "test")
	assert.Equal(t, `!(name == "test")`, p.Negate().String())

	p2 := querylanguage.Not(querylanguage.Eq("name", "test"))
	assert.Equal(t, `!(!(name == "test"))`, p2.Negate().String())

	p3 := querylanguage.And(
		querylanguage.Eq("a", 1),
		querylanguage.Eq("b", 2),
		querylanguage.Eq("c", 3),
	)
	assert.Equal(t, `!((a == 1 && b == 2 && c == 3))`, p3.Negate().String())

	p4 := querylanguage.Has("owner")
	assert.Equal(t, `!(has(owner))`, p4.Negate().String())
}
