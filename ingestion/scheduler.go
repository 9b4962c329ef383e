package ingestion

import (
	"context"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/telemetry"
)

// Executor is the capability the scheduler drives, satisfied by
// handler.Executor without this package importing handler (handler
// already imports ingestion for BlockData, and Go disallows the cycle).
type Executor interface {
	HandleEvents(ctx context.Context, blocks []BlockData) (NextCursor uint64, err error)
}

// KillSwitch reports whether a running indexer has been asked to stop,
// checked between every block batch.
type KillSwitch interface {
	Killed() bool
}

// Scheduler pages blocks from a NodeClient, enriches each with its
// transactions and receipts, and drives an Executor until killed or idle
// past its configured limits. Grounded on executor.rs::run_executor.
type Scheduler struct {
	node     NodeClient
	executor Executor
	defaults Defaults
	kill     KillSwitch
	logger   telemetry.Logger
}

// New returns a Scheduler for the given node client and executor. A nil
// logger is replaced with telemetry.NopLogger.
func New(node NodeClient, executor Executor, defaults Defaults, kill KillSwitch, logger telemetry.Logger) *Scheduler {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	return &Scheduler{node: node, executor: executor, defaults: defaults, kill: kill, logger: logger}
}

// Run drives the fetch/enrich/handle loop starting at startBlock (the
// cursor begins one block before it, matching run_executor's
// "decremented" start), until ctx is cancelled, the kill switch trips, or
// the scheduler gives up per its retry/idle limits.
func (s *Scheduler) Run(ctx context.Context, startBlock uint64) error {
	cursor := ""
	if startBlock > 1 {
		cursor = strconv.FormatUint(startBlock-1, 10)
	}

	maxEmptyBlockReqs := s.defaults.MaxEmptyBlockRequests
	if !s.defaults.StopIdleIndexers {
		maxEmptyBlockReqs = -1 // no cap: run forever on empty pages
	}
	numEmptyBlockReqs := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch, err := s.node.Blocks(ctx, cursor, s.defaults.PageSize)
		if err != nil {
			s.logger.Warn("block fetch failed, retrying", "error", err)
			if sleepErr := sleepCtx(ctx, s.defaults.DelayForServiceErr); sleepErr != nil {
				return sleepErr
			}
			if s.kill != nil && s.kill.Killed() {
				return fuelindexer.ErrKilled
			}
			continue
		}

		enriched := s.enrich(ctx, batch.Blocks)

		if err := s.handleWithRetry(ctx, enriched); err != nil {
			return fuelindexer.NewIngestionError(fuelindexer.NodeTransport, err)
		}

		if batch.Cursor == "" {
			if sleepErr := sleepCtx(ctx, s.defaults.DelayForEmptyPage); sleepErr != nil {
				return sleepErr
			}
			numEmptyBlockReqs++
			if maxEmptyBlockReqs >= 0 && numEmptyBlockReqs >= maxEmptyBlockReqs {
				return nil
			}
		} else {
			cursor = batch.Cursor
			numEmptyBlockReqs = 0
		}

		if s.kill != nil && s.kill.Killed() {
			return fuelindexer.ErrKilled
		}
	}
}

// handleWithRetry calls the executor, retrying up to IndexFailedCalls
// times with a constant DelayForServiceErr backoff before giving up,
// matching run_executor's retry_count/INDEX_FAILED_CALLS loop.
func (s *Scheduler) handleWithRetry(ctx context.Context, blocks []BlockData) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.defaults.DelayForServiceErr), uint64(s.defaults.IndexFailedCalls-1)),
		ctx,
	)
	return backoff.Retry(func() error {
		_, err := s.executor.HandleEvents(ctx, blocks)
		return err
	}, policy)
}

// enrich fetches transaction status and receipts for every transaction in
// blocks, skipping a transaction on fetch failure rather than failing the
// whole batch (per executor.rs's "Error fetching transactions" handling).
func (s *Scheduler) enrich(ctx context.Context, blocks []BlockData) []BlockData {
	out := make([]BlockData, len(blocks))
	for i, b := range blocks {
		txs := make([]TransactionData, 0, len(b.Transactions))
		for _, tx := range b.Transactions {
			status, err := s.node.Transaction(ctx, tx.ID)
			if err != nil {
				continue
			}
			receipts, err := s.node.Receipts(ctx, tx.ID)
			if err != nil {
				receipts = nil
			}
			tx.Status = status
			tx.Receipts = receipts
			txs = append(txs, tx)
		}
		b.Transactions = txs
		out[i] = b
	}
	return out
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
