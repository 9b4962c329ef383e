package handler

import (
	"context"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/ingestion"
)

// HandleFunc is the signature a Go program registers at indexer
// registration time, mirroring NativeIndexExecutor's handle_events_fn.
type HandleFunc func(ctx context.Context, blocks []ingestion.BlockData, db *DB) error

// Native dispatches straight to a registered Go function, wrapping the
// call in a transaction the way both substrates do.
type Native struct {
	driver     dialect.Driver
	dial       dialect.DbDialect
	namespace  string
	identifier string
	fn         HandleFunc
}

// NewNative returns a Native executor for fn, scoped to namespace/identifier.
func NewNative(driver dialect.Driver, dial dialect.DbDialect, namespace, identifier string, fn HandleFunc) *Native {
	return &Native{driver: driver, dial: dial, namespace: namespace, identifier: identifier, fn: fn}
}

// HandleEvents runs fn inside one transaction and reports the outcome.
func (n *Native) HandleEvents(ctx context.Context, blocks []ingestion.BlockData) (Result, error) {
	if n.fn == nil {
		return Result{}, fuelindexer.NewRuntimeError(fuelindexer.MissingHandler, nil)
	}

	err := runInTx(ctx, n.driver, n.dial, n.namespace, n.identifier, func(db *DB) error {
		return n.fn(ctx, blocks, db)
	})
	if err != nil {
		if fuelindexer.IsRuntimeError(err, "") {
			return Result{}, err
		}
		return Result{}, fuelindexer.NewRuntimeError(fuelindexer.NativeExecutionFailed, err)
	}

	return Result{BlocksApplied: len(blocks), NextCursor: nextCursor(blocks)}, nil
}

// nextCursor returns the height of the last block in a non-empty batch.
func nextCursor(blocks []ingestion.BlockData) uint64 {
	if len(blocks) == 0 {
		return 0
	}
	return blocks[len(blocks)-1].Height
}
