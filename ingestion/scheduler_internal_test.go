package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrichNode struct {
	failTx string
}

func (n *enrichNode) Blocks(ctx context.Context, cursor string, pageSize int) (Batch, error) {
	return Batch{}, nil
}

func (n *enrichNode) Transaction(ctx context.Context, id string) (TransactionStatus, error) {
	if id == n.failTx {
		return TransactionStatus{}, errors.New("node unreachable")
	}
	return TransactionStatus{Kind: StatusSuccess, BlockID: "b1"}, nil
}

func (n *enrichNode) Receipts(ctx context.Context, id string) ([][]byte, error) {
	return [][]byte{[]byte("receipt-" + id)}, nil
}

func TestScheduler_EnrichSkipsTransactionOnFetchFailure(t *testing.T) {
	s := &Scheduler{node: &enrichNode{failTx: "bad"}}

	blocks := []BlockData{{
		Height: 1,
		Transactions: []TransactionData{
			{ID: "good"},
			{ID: "bad"},
		},
	}}

	out := s.enrich(context.Background(), blocks)
	require.Len(t, out, 1)
	require.Len(t, out[0].Transactions, 1)
	assert.Equal(t, "good", out[0].Transactions[0].ID)
	assert.Equal(t, StatusSuccess, out[0].Transactions[0].Status.Kind)
	assert.Equal(t, [][]byte{[]byte("receipt-good")}, out[0].Transactions[0].Receipts)
}
