// Package handler implements the handler host of spec.md §4.6: one
// capability, two substrates. A Native executor dispatches straight to a
// registered Go function; a Wasm executor hosts a sandboxed module behind
// the same pointer/length ABI. Both wrap a single invocation in
// begin -> run -> commit|rollback over a dialect.Tx.
package handler

import (
	"context"
	"fmt"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/ingestion"
)

// Result reports the outcome of one HandleEvents call: how many blocks
// were applied and the cursor the scheduler should resume from next.
type Result struct {
	BlocksApplied int
	NextCursor    uint64
}

// Executor is the single capability every handler substrate implements,
// matching spec.md §4.6's "one capability interface (handle_events);
// dispatch statically at registration time per indexer".
type Executor interface {
	HandleEvents(ctx context.Context, batch []ingestion.BlockData) (Result, error)
}

// runInTx begins a transaction on driver, hands it to run as a *DB, and
// commits on success or rolls back on failure — the begin -> run ->
// commit|rollback wrapping every substrate shares.
func runInTx(ctx context.Context, driver dialect.Driver, dial dialect.DbDialect, namespace, identifier string, run func(*DB) error) (rerr error) {
	tx, err := driver.Tx(ctx)
	if err != nil {
		return fuelindexer.NewRuntimeError(fuelindexer.DatabaseTransport, err)
	}
	db := NewDB(tx, dial, namespace, identifier)

	defer func() {
		if rerr != nil {
			if rbErr := db.Rollback(); rbErr != nil {
				rerr = fmt.Errorf("%w (rollback failed: %v)", rerr, rbErr)
			}
			return
		}
		rerr = db.Commit()
	}()

	if err := run(db); err != nil {
		return err
	}
	return nil
}
