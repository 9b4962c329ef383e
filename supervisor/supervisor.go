package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/handler"
	"github.com/luizstacio/fuel-indexer/ingestion"
	"github.com/luizstacio/fuel-indexer/schema"
	"github.com/luizstacio/fuel-indexer/schema/store"
	"github.com/luizstacio/fuel-indexer/telemetry"
	"github.com/luizstacio/fuel-indexer/typegraph"
)

// ReloadFunc rebuilds the handler.Executor an indexer should dispatch to
// after an AssetReload, e.g. by pulling the newest compiled wasm module
// out of whatever object store a deployment uses. The persisted metadata
// store this repo owns holds compiled schema rows, not raw module blobs,
// so fetching the new module bytes is left to the caller.
type ReloadFunc func(ctx context.Context) (handler.Executor, error)

// RegisterInput is everything Supervisor.Register needs to start driving
// one indexer task.
type RegisterInput struct {
	ID         IndexerID
	Node       ingestion.NodeClient
	Defaults   ingestion.Defaults
	Executor   handler.Executor
	StartBlock uint64
	Reload     ReloadFunc
}

// Supervisor owns the bounded admin mailbox and the registry of running
// indexer tasks, the concurrency model of spec.md §5 made concrete:
// "one goroutine per indexer task ... delivered via a bounded mailbox."
type Supervisor struct {
	mailbox chan ServiceRequest
	store   *store.Store
	dial    dialect.DbDialect
	driver  dialect.Driver
	logger  telemetry.Logger

	mu       sync.Mutex
	registry map[IndexerID]*indexerTask
}

// New returns a Supervisor with a mailbox of the given capacity
// (ingestion.Defaults.ServiceRequestChannelSize in production). A nil
// logger is replaced with telemetry.NopLogger.
func New(st *store.Store, dial dialect.DbDialect, driver dialect.Driver, mailboxCapacity int, logger telemetry.Logger) *Supervisor {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	return &Supervisor{
		mailbox:  make(chan ServiceRequest, mailboxCapacity),
		store:    st,
		dial:     dial,
		driver:   driver,
		logger:   logger,
		registry: make(map[IndexerID]*indexerTask),
	}
}

// Register spawns one goroutine running ingestion.Scheduler.Run for in.ID,
// driving in.Executor through a swappable adapter so a later
// AssetReload/IndexRevert can take it over in place.
func (s *Supervisor) Register(ctx context.Context, in RegisterInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[in.ID]; exists {
		return fmt.Errorf("supervisor: indexer %s/%s already registered", in.ID.Namespace, in.ID.Identifier)
	}

	current, err := s.compileCurrent(ctx, in.ID)
	if err != nil {
		return err
	}

	task := &indexerTask{
		id:       in.ID,
		node:     in.Node,
		defaults: in.Defaults,
		executor: newSwappableExecutor(in.Executor),
		kill:     &killFlag{},
		logger:   s.logger,
		reload:   in.Reload,
		current:  current,
	}
	task.run(ctx, in.StartBlock)
	s.registry[in.ID] = task
	return nil
}

// compileCurrent recompiles the schema persisted for id, for use as the
// reload safety check's baseline. Returns nil if nothing has been
// persisted yet (first registration of a fresh indexer).
func (s *Supervisor) compileCurrent(ctx context.Context, id IndexerID) (*schema.Compiled, error) {
	text, version, err := s.store.LoadSchemaText(ctx, id.Namespace, id.Identifier)
	if err != nil {
		return nil, nil
	}
	doc, err := typegraph.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("supervisor: reparse persisted schema for %s/%s: %w", id.Namespace, id.Identifier, err)
	}
	return schema.Compile(doc, id.Namespace, id.Identifier, version, s.dial)
}

// Dispatch enqueues req onto the bounded mailbox, returning an error
// immediately if it is full rather than blocking the caller forever. A
// blank req.CorrelationID is filled in so every admin message can be
// traced through its log lines.
func (s *Supervisor) Dispatch(req ServiceRequest) error {
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}
	select {
	case s.mailbox <- req:
		return nil
	default:
		return fmt.Errorf("supervisor: mailbox full")
	}
}

// Run services the mailbox until ctx is cancelled, applying each
// ServiceRequest to its addressed task in order.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.mailbox:
			s.handle(ctx, req)
		}
	}
}

func (s *Supervisor) handle(ctx context.Context, req ServiceRequest) {
	var err error
	switch {
	case req.AssetReload != nil:
		err = s.handleAssetReload(ctx, *req.AssetReload)
	case req.IndexStop != nil:
		err = s.handleIndexStop(*req.IndexStop)
	case req.IndexRevert != nil:
		err = s.handleIndexRevert(ctx, *req.IndexRevert)
	}
	if err != nil {
		s.logger.Warn("admin request failed", "correlation_id", req.CorrelationID, "error", err)
	}
}

// handleAssetReload re-parses and recompiles the schema now persisted for
// the addressed indexer, validates the swap is safe via
// schema.ValidateReload, and — only if safe — rebuilds the handler
// executor via req's task's ReloadFunc and restarts the scheduler loop
// from its last-committed cursor, per spec.md §4.7: "AssetReload swaps
// the handler module under the same identity and resets the cursor to
// current state."
func (s *Supervisor) handleAssetReload(ctx context.Context, req AssetReloadRequest) error {
	id := IndexerID{req.Namespace, req.Identifier}
	task, ok := s.task(id)
	if !ok {
		return fmt.Errorf("supervisor: asset reload: unknown indexer %s/%s", id.Namespace, id.Identifier)
	}

	next, err := s.compileCurrent(ctx, id)
	if err != nil {
		return fmt.Errorf("supervisor: asset reload: recompile: %w", err)
	}

	if task.current != nil && next != nil {
		report := schema.ValidateReload(task.current, next)
		if report.HasErrors() {
			return fmt.Errorf("supervisor: asset reload: unsafe schema change:\n%s", report.String())
		}
	}

	if task.reload == nil {
		return fmt.Errorf("supervisor: asset reload: indexer %s/%s has no reload hook", id.Namespace, id.Identifier)
	}
	newExecutor, err := task.reload(ctx)
	if err != nil {
		return fmt.Errorf("supervisor: asset reload: rebuild executor: %w", err)
	}

	resume := task.executor.lastCursor()
	task.executor.swap(newExecutor)
	task.current = next
	task.restart(ctx, resume+1)
	return nil
}

// handleIndexStop trips the addressed task's kill flag and waits for its
// scheduler loop to finish its in-flight batch and exit, per spec.md §5:
// "IndexStop sets the flag and awaits the task handle."
func (s *Supervisor) handleIndexStop(req IndexStopRequest) error {
	id := IndexerID{req.Namespace, req.Identifier}
	task, ok := s.task(id)
	if !ok {
		return fmt.Errorf("supervisor: index stop: unknown indexer %s/%s", id.Namespace, id.Identifier)
	}

	s.mu.Lock()
	delete(s.registry, id)
	s.mu.Unlock()

	if err := task.stop(); err != nil && !errors.Is(err, fuelindexer.ErrKilled) && !fuelindexer.IsIngestionError(err, fuelindexer.Killed) {
		return err
	}
	return nil
}

// handleIndexRevert rebuilds the handler executor directly from the
// penultimate wasm module bytes carried in the request and restarts the
// scheduler from the indexer's last-committed cursor, matching spec.md
// §4.7: "IndexRevert reverts to a named prior asset blob and re-seeds the
// cursor."
func (s *Supervisor) handleIndexRevert(ctx context.Context, req IndexRevertRequest) error {
	id := IndexerID{req.Namespace, req.Identifier}
	task, ok := s.task(id)
	if !ok {
		return fmt.Errorf("supervisor: index revert: unknown indexer %s/%s", id.Namespace, id.Identifier)
	}

	reverted, err := handler.NewWasm(ctx, req.PenultimateAssetBytes, s.driver, s.dial, id.Namespace, id.Identifier)
	if err != nil {
		return fmt.Errorf("supervisor: index revert: load penultimate asset %d: %w", req.PenultimateAssetID, err)
	}

	resume := task.executor.lastCursor()
	task.executor.swap(reverted)
	task.restart(ctx, resume+1)
	return nil
}

func (s *Supervisor) task(id IndexerID) (*indexerTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.registry[id]
	return t, ok
}

// Shutdown stops every registered indexer task and waits for each to
// exit.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	tasks := make([]*indexerTask, 0, len(s.registry))
	for _, t := range s.registry {
		tasks = append(tasks, t)
	}
	s.registry = make(map[IndexerID]*indexerTask)
	s.mu.Unlock()

	for _, t := range tasks {
		_ = t.stop()
	}
}
