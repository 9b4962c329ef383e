package supervisor

import (
	"context"
	"sync"

	"github.com/luizstacio/fuel-indexer/handler"
	"github.com/luizstacio/fuel-indexer/ingestion"
)

// swappableExecutor adapts a handler.Executor (Result-returning) into
// ingestion.Executor ((uint64, error)-returning), and lets AssetReload and
// IndexRevert swap the underlying handler.Executor under a running
// ingestion.Scheduler without restarting its goroutine.
type swappableExecutor struct {
	mu      sync.RWMutex
	current handler.Executor
	cursor  uint64
}

func newSwappableExecutor(initial handler.Executor) *swappableExecutor {
	return &swappableExecutor{current: initial}
}

// HandleEvents satisfies ingestion.Executor by delegating to the current
// handler.Executor and tracking the last cursor it reported, so a
// subsequent AssetReload/IndexRevert can resume from it.
func (e *swappableExecutor) HandleEvents(ctx context.Context, blocks []ingestion.BlockData) (uint64, error) {
	e.mu.RLock()
	cur := e.current
	e.mu.RUnlock()

	res, err := cur.HandleEvents(ctx, blocks)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	if res.NextCursor > e.cursor {
		e.cursor = res.NextCursor
	}
	cursor := e.cursor
	e.mu.Unlock()

	return cursor, nil
}

// swap replaces the handler.Executor a running task dispatches to.
func (e *swappableExecutor) swap(next handler.Executor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = next
}

// lastCursor returns the most recently committed cursor, used to re-seed
// the scheduler on AssetReload/IndexRevert.
func (e *swappableExecutor) lastCursor() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor
}
