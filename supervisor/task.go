package supervisor

import (
	"context"
	"sync/atomic"

	"github.com/luizstacio/fuel-indexer/ingestion"
	"github.com/luizstacio/fuel-indexer/schema"
	"github.com/luizstacio/fuel-indexer/telemetry"
)

// killFlag is the atomic kill flag spec.md §5 calls for ("an atomic kill
// flag per indexer ... checked between batches"), separate from context
// cancellation since a Scheduler must finish its in-flight batch before
// observing it.
type killFlag struct {
	flag atomic.Bool
}

func (k *killFlag) Killed() bool { return k.flag.Load() }
func (k *killFlag) trip()        { k.flag.Store(true) }

var _ ingestion.KillSwitch = (*killFlag)(nil)

// indexerTask is one running indexer: the goroutine driving
// ingestion.Scheduler.Run against a swappable handler.Executor, plus the
// state needed to stop, reload, or revert it in place.
type indexerTask struct {
	id       IndexerID
	node     ingestion.NodeClient
	defaults ingestion.Defaults
	executor *swappableExecutor
	kill     *killFlag
	logger   telemetry.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	err      error

	// reload rebuilds this task's handler executor on AssetReload.
	reload ReloadFunc
	// current is the compiled schema this task was last validated
	// against, the baseline for the next AssetReload's safety check.
	current *schema.Compiled
}

// run starts the scheduler loop for this task in its own goroutine,
// resuming from startBlock. Call once per task; AssetReload/IndexRevert
// call restart instead of run again.
func (t *indexerTask) run(parent context.Context, startBlock uint64) {
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.done = make(chan struct{})

	sched := ingestion.New(t.node, t.executor, t.defaults, t.kill, t.logger)
	go func() {
		defer close(t.done)
		t.err = sched.Run(ctx, startBlock)
	}()
}

// stop trips the kill flag and waits for the running scheduler loop to
// observe it and return, matching spec.md §5's "IndexStop sets the flag
// and awaits the task handle".
func (t *indexerTask) stop() error {
	t.kill.trip()
	<-t.done
	return t.err
}

// restart cancels the current scheduler loop, resets the kill flag, and
// starts a fresh one from resumeBlock (one past the executor's
// last-committed cursor), used by AssetReload and IndexRevert to take
// over a live task without losing ingestion progress.
func (t *indexerTask) restart(parent context.Context, resumeBlock uint64) {
	t.cancel()
	<-t.done
	t.kill = &killFlag{}
	t.run(parent, resumeBlock)
}
