package handler

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsOnDedicatedGoroutine(t *testing.T) {
	p := newWorkerPool(1)
	defer p.Close()

	callerG := currentGoroutineID()
	var sawG uint64
	err := p.run(context.Background(), func() error {
		sawG = currentGoroutineID()
		return nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, callerG, sawG)
}

func TestWorkerPool_PropagatesJobError(t *testing.T) {
	p := newWorkerPool(1)
	defer p.Close()

	wantErr := errors.New("handler trap")
	err := p.run(context.Background(), func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestWorkerPool_SerializesSingleWorker(t *testing.T) {
	p := newWorkerPool(1)
	defer p.Close()

	var inFlight int32
	var sawOverlap int32
	job := func() error {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.StoreInt32(&sawOverlap, 1)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}

	done := make(chan error, 2)
	go func() { done <- p.run(context.Background(), job) }()
	go func() { done <- p.run(context.Background(), job) }()
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.Zero(t, sawOverlap)
}

func TestWorkerPool_RunCancelledByContext(t *testing.T) {
	p := newWorkerPool(0) // clamps to 1 worker, busy below
	defer p.Close()

	block := make(chan struct{})
	go p.run(context.Background(), func() error { <-block; return nil })
	// give the sole worker time to pick up the first job
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.run(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(block)
}

// currentGoroutineID parses the numeric id out of runtime.Stack's
// header line, good enough to assert two calls ran on different
// goroutines without pulling in a runtime/debug dependency.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	var id uint64
	for _, b := range buf[len("goroutine "):] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + uint64(b-'0')
	}
	return id
}
