package ingestion

import "context"

// Batch is one page of blocks plus the node's opaque cursor for the next
// page, or an empty Cursor when there is nothing new yet.
type Batch struct {
	Blocks []BlockData
	Cursor string
}

// NodeClient is the block-fetch protocol of spec.md §6: paginated blocks,
// then per-transaction detail fetched during enrichment. Implementations
// talk to a Fuel node's GraphQL API; tests supply a fake.
type NodeClient interface {
	// Blocks returns the page of blocks following cursor (empty cursor
	// means "from the beginning"), up to pageSize results.
	Blocks(ctx context.Context, cursor string, pageSize int) (Batch, error)
	// Transaction fetches one transaction's status by id.
	Transaction(ctx context.Context, id string) (TransactionStatus, error)
	// Receipts fetches one transaction's receipts by id.
	Receipts(ctx context.Context, id string) ([][]byte, error)
}
