package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizstacio/fuel-indexer/ingestion"
)

func TestEncodeDecodeBatch_RoundTrips(t *testing.T) {
	blocks := []ingestion.BlockData{
		{
			Height:   10,
			ID:       "block-10",
			Producer: "p1",
			Time:     1234,
			Transactions: []ingestion.TransactionData{
				{ID: "tx-1", Receipts: [][]byte{[]byte("r1")}, Status: ingestion.TransactionStatus{Kind: ingestion.StatusSuccess}},
			},
		},
	}

	data, err := encodeBatch(blocks)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := decodeBatch(data)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)
}

func TestMsgpackMap_RoundTrips(t *testing.T) {
	row := map[string]any{"id": "1", "height": int64(5)}
	data, err := msgpackMap(row)
	require.NoError(t, err)

	got, err := unmsgpackMap(data)
	require.NoError(t, err)
	assert.EqualValues(t, row["id"], got["id"])
	assert.EqualValues(t, row["height"], got["height"])
}
