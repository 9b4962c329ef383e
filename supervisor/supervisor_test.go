package supervisor_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/handler"
	"github.com/luizstacio/fuel-indexer/ingestion"
	"github.com/luizstacio/fuel-indexer/schema/store"
	"github.com/luizstacio/fuel-indexer/supervisor"
)

const testSchema = `
	schema { query: QR }
	type QR { things: Thing }
	type Thing { id: ID! name: Address! }
`

func newTestStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db, dialect.NewPostgres()), mock
}

func expectNoPersistedSchema(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT version, schema_text").
		WillReturnError(sql.ErrNoRows)
}

func expectPersistedSchema(mock sqlmock.Sqlmock, version string) {
	rows := sqlmock.NewRows([]string{"version", "schema_text"}).AddRow(version, testSchema)
	mock.ExpectQuery("SELECT version, schema_text").WillReturnRows(rows)
}

// testDefaults keeps the empty-page sleep short so a scheduler loop
// notices a tripped kill flag quickly, without capping idle iterations
// (StopIdleIndexers false), matching the indexer's normal run mode.
func testDefaults() ingestion.Defaults {
	d := ingestion.DefaultDefaults()
	d.DelayForEmptyPage = 10 * time.Millisecond
	d.DelayForServiceErr = 10 * time.Millisecond
	return d
}

// fakeNode always reports an empty page immediately; it never blocks on
// ctx, so a scheduler loop only stops when its kill flag is observed
// between iterations, exactly as spec.md §5 describes.
type fakeNode struct{}

func (fakeNode) Blocks(ctx context.Context, cursor string, pageSize int) (ingestion.Batch, error) {
	return ingestion.Batch{}, nil
}
func (fakeNode) Transaction(ctx context.Context, id string) (ingestion.TransactionStatus, error) {
	return ingestion.TransactionStatus{}, nil
}
func (fakeNode) Receipts(ctx context.Context, id string) ([][]byte, error) { return nil, nil }

type fakeHandler struct {
	blocksApplied int
}

func (f *fakeHandler) HandleEvents(ctx context.Context, blocks []ingestion.BlockData) (handler.Result, error) {
	f.blocksApplied++
	return handler.Result{BlocksApplied: len(blocks), NextCursor: 5}, nil
}

func TestSupervisor_RegisterStartsTaskAndStopStopsIt(t *testing.T) {
	st, mock := newTestStore(t)
	expectNoPersistedSchema(mock)

	sup := supervisor.New(st, dialect.NewPostgres(), nil, 10, nil)

	id := supervisor.IndexerID{Namespace: "ns", Identifier: "idx"}
	err := sup.Register(context.Background(), supervisor.RegisterInput{
		ID:         id,
		Node:       fakeNode{},
		Defaults:   testDefaults(),
		Executor:   &fakeHandler{},
		StartBlock: 1,
	})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(runCtx)

	require.NoError(t, sup.Dispatch(supervisor.ServiceRequest{
		IndexStop: &supervisor.IndexStopRequest{Namespace: "ns", Identifier: "idx"},
	}))

	// Registering the same ID again only succeeds once the prior task's
	// slot has been freed by the processed IndexStop.
	require.Eventually(t, func() bool {
		return sup.Register(context.Background(), supervisor.RegisterInput{
			ID: id, Node: fakeNode{}, Defaults: testDefaults(),
			Executor: &fakeHandler{}, StartBlock: 1,
		}) == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSupervisor_Register_DuplicateFails(t *testing.T) {
	st, mock := newTestStore(t)
	expectNoPersistedSchema(mock)
	expectNoPersistedSchema(mock)

	sup := supervisor.New(st, dialect.NewPostgres(), nil, 10, nil)
	id := supervisor.IndexerID{Namespace: "ns", Identifier: "idx"}
	in := supervisor.RegisterInput{
		ID: id, Node: fakeNode{}, Defaults: testDefaults(),
		Executor: &fakeHandler{}, StartBlock: 1,
	}
	require.NoError(t, sup.Register(context.Background(), in))
	err := sup.Register(context.Background(), in)
	assert.Error(t, err)
}

func TestSupervisor_AssetReload_RebuildsExecutor(t *testing.T) {
	st, mock := newTestStore(t)
	expectNoPersistedSchema(mock) // initial Register baseline: nothing persisted yet

	sup := supervisor.New(st, dialect.NewPostgres(), nil, 10, nil)
	id := supervisor.IndexerID{Namespace: "ns", Identifier: "idx"}

	reloaded := &fakeHandler{}
	var reloadCalls int
	err := sup.Register(context.Background(), supervisor.RegisterInput{
		ID:         id,
		Node:       fakeNode{},
		Defaults:   testDefaults(),
		Executor:   &fakeHandler{},
		StartBlock: 1,
		Reload: func(ctx context.Context) (handler.Executor, error) {
			reloadCalls++
			return reloaded, nil
		},
	})
	require.NoError(t, err)

	expectPersistedSchema(mock, "v2") // AssetReload's recompile of the newly persisted version

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(runCtx)

	require.NoError(t, sup.Dispatch(supervisor.ServiceRequest{
		AssetReload: &supervisor.AssetReloadRequest{Namespace: "ns", Identifier: "idx"},
	}))

	require.Eventually(t, func() bool {
		return reloadCalls == 1 && reloaded.blocksApplied > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, mock.ExpectationsWereMet())

	require.NoError(t, sup.Dispatch(supervisor.ServiceRequest{
		IndexStop: &supervisor.IndexStopRequest{Namespace: "ns", Identifier: "idx"},
	}))
}

func TestSupervisor_IndexStop_UnknownIndexer(t *testing.T) {
	st, _ := newTestStore(t)
	sup := supervisor.New(st, dialect.NewPostgres(), nil, 10, nil)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(runCtx)

	// Dispatch succeeds (the mailbox accepted it); the handler discards an
	// unknown-indexer stop request rather than panicking.
	require.NoError(t, sup.Dispatch(supervisor.ServiceRequest{
		IndexStop: &supervisor.IndexStopRequest{Namespace: "absent", Identifier: "idx"},
	}))
	time.Sleep(20 * time.Millisecond)
}

func TestSupervisor_Dispatch_FullMailboxErrors(t *testing.T) {
	st, _ := newTestStore(t)
	sup := supervisor.New(st, dialect.NewPostgres(), nil, 1, nil)

	require.NoError(t, sup.Dispatch(supervisor.ServiceRequest{
		IndexStop: &supervisor.IndexStopRequest{Namespace: "ns", Identifier: "a"},
	}))
	err := sup.Dispatch(supervisor.ServiceRequest{
		IndexStop: &supervisor.IndexStopRequest{Namespace: "ns", Identifier: "b"},
	})
	assert.Error(t, err)
}
