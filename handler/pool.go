package handler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// workerPool pins blocking work onto a small fixed set of dedicated
// goroutines, the way syssam-velox/compiler/gen/generate.go bounds its
// parallel codegen with errgroup.WithContext+SetLimit. Here the pool
// holds exactly one worker by default: a Wasm invocation must run off
// the caller's own goroutine so the cooperative executor driving it
// (the ingestion scheduler) is never stalled inside wazero, per
// spec.md §5.
type workerPool struct {
	jobs   chan func()
	grp    *errgroup.Group
	cancel context.CancelFunc
}

// newWorkerPool starts workers goroutines, each pulling closures off a
// shared job queue until the pool is closed.
func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	grp, ctx := errgroup.WithContext(ctx)
	p := &workerPool{jobs: make(chan func()), grp: grp, cancel: cancel}

	for i := 0; i < workers; i++ {
		grp.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case job, ok := <-p.jobs:
					if !ok {
						return nil
					}
					job()
				}
			}
		})
	}
	return p
}

// run submits fn to a worker and blocks the caller until it completes
// or ctx is cancelled first.
func (p *workerPool) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case p.jobs <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for every worker to drain.
func (p *workerPool) Close() {
	close(p.jobs)
	p.cancel()
	_ = p.grp.Wait()
}
