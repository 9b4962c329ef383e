package querycompiler_test

import (
	"testing"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/querycompiler"
	"github.com/luizstacio/fuel-indexer/queryparser"
	"github.com/luizstacio/fuel-indexer/schema/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReflection() *store.Reflection {
	return &store.Reflection{
		Namespace:  "myns",
		Identifier: "myid",
		Query:      "Query",
		Types: map[string]bool{"Query": true, "Tx": true, "Block": true},
		Fields: map[string]map[string]string{
			"Query": {"tx": "Tx"},
			"Tx":     {"id": "ID", "timestamp": "UInt64", "block": "Block"},
			"Block":  {"id": "ID", "height": "UInt64"},
		},
		ForeignKeys: map[string]map[string]store.FK{
			"tx": {"block": {Table: "block", Column: "id"}},
		},
	}
}

func mustParse(t *testing.T, text string) *queryparser.Selections {
	t.Helper()
	sels, err := queryparser.Parse(text, testReflection())
	require.NoError(t, err)
	return sels
}

func TestCompile_ElementSequenceAndJoinGraph(t *testing.T) {
	sels := mustParse(t, `{ tx { block { id height } id timestamp } }`)
	queries, err := querycompiler.Compile(sels, testReflection())
	require.NoError(t, err)
	require.Len(t, queries, 1)

	uq := queries[0]
	assert.Equal(t, "tx", uq.RootTable)

	var got []string
	for _, el := range uq.Elements {
		switch el.Kind {
		case querycompiler.KindObjectOpen:
			got = append(got, "open:"+el.Key)
		case querycompiler.KindObjectClose:
			got = append(got, "close")
		case querycompiler.KindField:
			got = append(got, "field:"+el.Key+"="+el.Value)
		}
	}
	assert.Equal(t, []string{
		"open:block",
		"field:id=myns_myid.block.id",
		"field:height=myns_myid.block.height",
		"close",
		"field:id=myns_myid.tx.id",
		"field:timestamp=myns_myid.tx.timestamp",
	}, got)

	order, err := uq.Joins.TopoOrder()
	require.NoError(t, err)
	pos := map[string]int{}
	for i, tb := range order {
		pos[tb] = i
	}
	assert.Less(t, pos["block"], pos["tx"])
}

func TestCompile_BoundaryBalance(t *testing.T) {
	sels := mustParse(t, `{ tx { block { id height } id timestamp } }`)
	queries, err := querycompiler.Compile(sels, testReflection())
	require.NoError(t, err)

	var opens, closes int
	for _, el := range queries[0].Elements {
		switch el.Kind {
		case querycompiler.KindObjectOpen:
			opens++
		case querycompiler.KindObjectClose:
			closes++
		}
	}
	assert.Equal(t, opens, closes)
}

func TestCompile_PaginationGuard(t *testing.T) {
	sels := mustParse(t, `{ tx(first: 10) { id } }`)
	_, err := querycompiler.Compile(sels, testReflection())
	require.Error(t, err)
	assert.True(t, fuelindexer.IsQueryCompileError(err, fuelindexer.UnorderedPaginatedQuery))
}

func TestCompile_PaginationWithOrderOK(t *testing.T) {
	sels := mustParse(t, `{ tx(first: 10, order: {id: "asc"}) { id } }`)
	queries, err := querycompiler.Compile(sels, testReflection())
	require.NoError(t, err)
	require.NotNil(t, queries[0].Params["tx"])
	assert.Equal(t, 10, *queries[0].Params["tx"].First)
}
