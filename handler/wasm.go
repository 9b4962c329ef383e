package handler

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/ingestion"
)

// Wasm loads a sandboxed handler module and drives it through the
// pointer/length ABI of spec.md §6, using wazero instead of the
// original's wasmer bindings (grounded in the pack's okra-platform-okra
// and untoldecay-BeadsLog manifests, both of which depend on wazero for
// sandboxed module hosting).
type Wasm struct {
	runtime    wazero.Runtime
	compiled   wazero.CompiledModule
	driver     dialect.Driver
	dial       dialect.DbDialect
	namespace  string
	identifier string
	pool       *workerPool
}

// NewWasm compiles wasmBytes and returns a Wasm executor scoped to
// namespace/identifier. The returned executor owns runtime and must be
// closed via Close when the indexer stops. Every HandleEvents call is
// dispatched onto a single dedicated worker goroutine rather than the
// caller's own, per spec.md §5.
func NewWasm(ctx context.Context, wasmBytes []byte, driver dialect.Driver, dial dialect.DbDialect, namespace, identifier string) (*Wasm, error) {
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("handler: compile module: %w", err)
	}

	return &Wasm{
		runtime:    rt,
		compiled:   compiled,
		driver:     driver,
		dial:       dial,
		namespace:  namespace,
		identifier: identifier,
		pool:       newWorkerPool(1),
	}, nil
}

// Close releases the wazero runtime and every module instantiated from
// it, and stops this executor's worker pool.
func (w *Wasm) Close(ctx context.Context) error {
	w.pool.Close()
	return w.runtime.Close(ctx)
}

// HandleEvents instantiates a fresh module instance bound to one
// transaction, encodes blocks across the ABI, and invokes handle_events.
// The call itself runs on w.pool's worker, not on the caller's
// goroutine.
func (w *Wasm) HandleEvents(ctx context.Context, blocks []ingestion.BlockData) (Result, error) {
	payload, err := encodeBatch(blocks)
	if err != nil {
		return Result{}, fmt.Errorf("handler: encode batch: %w", err)
	}

	var result Result
	err = w.pool.run(ctx, func() error {
		return w.invoke(ctx, payload, blocks, &result)
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// invoke runs one handle_events call inside a fresh transaction and
// module instance, the body previously inlined directly into
// HandleEvents before it was moved onto w.pool's worker.
func (w *Wasm) invoke(ctx context.Context, payload []byte, blocks []ingestion.BlockData, result *Result) error {
	return runInTx(ctx, w.driver, w.dial, w.namespace, w.identifier, func(db *DB) error {
		host := buildHostModule(w.runtime, db)
		hostMod, err := host.Instantiate(ctx)
		if err != nil {
			return fuelindexer.NewRuntimeError(fuelindexer.DatabaseTransport, err)
		}
		defer hostMod.Close(ctx)

		mod, err := w.runtime.InstantiateModule(ctx, w.compiled, wazero.NewModuleConfig())
		if err != nil {
			return fuelindexer.NewRuntimeError(fuelindexer.HandlerTrap, err)
		}
		defer mod.Close(ctx)

		dealloc, handleEvents, err := lookupExports(mod)
		if err != nil {
			return err
		}

		ptr, err := writeResult(ctx, mod, payload)
		if err != nil {
			return fuelindexer.NewRuntimeError(fuelindexer.HandlerTrap, err)
		}
		argPtr := uint32(ptr >> 32)

		if _, err := handleEvents.Call(ctx, uint64(argPtr), uint64(len(payload))); err != nil {
			return fuelindexer.NewRuntimeError(fuelindexer.HandlerTrap, err)
		}

		if dealloc != nil {
			if _, err := dealloc.Call(ctx, uint64(argPtr), uint64(len(payload))); err != nil {
				return fuelindexer.NewRuntimeError(fuelindexer.HandlerTrap, err)
			}
		}

		*result = Result{BlocksApplied: len(blocks), NextCursor: nextCursor(blocks)}
		return nil
	})
}
