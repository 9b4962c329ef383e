// Package ingestion implements the block-fetch scheduler of spec.md §4.7:
// a cursor state machine that pages blocks from a node client, enriches
// each with its transactions and receipts, and drives a handler.Executor
// until killed or idle past its configured limits.
package ingestion

import "time"

// Defaults mirrors fuel-indexer-lib's defaults.rs constants, the tunables
// the scheduler falls back to when a manifest doesn't override them.
type Defaults struct {
	// PageSize bounds how many blocks one node request returns.
	PageSize int
	// DelayForServiceErr is how long the scheduler sleeps after a node
	// or handler error before retrying.
	DelayForServiceErr time.Duration
	// DelayForEmptyPage is how long the scheduler sleeps after a page
	// with no new blocks.
	DelayForEmptyPage time.Duration
	// MaxEmptyBlockRequests caps consecutive empty pages before the
	// scheduler gives up, when StopIdleIndexers is set.
	MaxEmptyBlockRequests int
	// IndexFailedCalls caps consecutive handler failures before the
	// scheduler gives up.
	IndexFailedCalls int
	// StopIdleIndexers, when false, makes MaxEmptyBlockRequests
	// effectively infinite (CI/test environments want the opposite).
	StopIdleIndexers bool
	// ServiceRequestChannelSize bounds the supervisor's admin mailbox.
	ServiceRequestChannelSize int
}

// DefaultDefaults returns the constants defaults.rs ships.
func DefaultDefaults() Defaults {
	return Defaults{
		PageSize:                  10,
		DelayForServiceErr:        5 * time.Second,
		DelayForEmptyPage:         1 * time.Second,
		MaxEmptyBlockRequests:     10,
		IndexFailedCalls:          10,
		StopIdleIndexers:         false,
		ServiceRequestChannelSize: 100,
	}
}
