package ingestion

import "time"

// BlockData is one block and its enriched transactions, the unit a
// handler.Executor receives per HandleEvents call. Grounded on
// fuel_indexer_types::abi::BlockData.
type BlockData struct {
	Height       uint64
	ID           string
	Producer     string
	Time         int64
	Transactions []TransactionData
}

// TransactionData is one transaction plus the receipts and status fetched
// for it during enrichment. Grounded on
// fuel_indexer_types::abi::TransactionData.
type TransactionData struct {
	ID       string
	Receipts [][]byte
	Status   TransactionStatus
}

// TransactionStatusKind discriminates the TransactionStatus tagged union.
type TransactionStatusKind string

const (
	StatusSuccess     TransactionStatusKind = "Success"
	StatusFailure     TransactionStatusKind = "Failure"
	StatusSubmitted   TransactionStatusKind = "Submitted"
	StatusSqueezedOut TransactionStatusKind = "SqueezedOut"
)

// TransactionStatus mirrors fuel_indexer_types::tx::TransactionStatus, a
// four-variant tagged union reported by the node's GraphQL API.
type TransactionStatus struct {
	Kind TransactionStatusKind

	// Set when Kind is Success or Failure.
	BlockID string
	Time    time.Time

	// Set when Kind is Failure.
	Reason string

	// Set when Kind is Submitted.
	SubmittedAt time.Time
}
