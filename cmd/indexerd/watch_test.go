package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
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
	"github.com/luizstacio/fuel-indexer/telemetry"
)

type watchTestNode struct{}

func (watchTestNode) Blocks(ctx context.Context, cursor string, pageSize int) (ingestion.Batch, error) {
	return ingestion.Batch{}, nil
}
func (watchTestNode) Transaction(ctx context.Context, id string) (ingestion.TransactionStatus, error) {
	return ingestion.TransactionStatus{}, nil
}
func (watchTestNode) Receipts(ctx context.Context, id string) ([][]byte, error) { return nil, nil }

type watchTestHandler struct{}

func (watchTestHandler) HandleEvents(ctx context.Context, blocks []ingestion.BlockData) (handler.Result, error) {
	return handler.Result{BlocksApplied: len(blocks)}, nil
}

// TestWatchWasmModule_TriggersAssetReloadOnWrite registers a real
// indexer task with a Reload hook, starts a filesystem watch over its
// module path, and confirms a write to that file alone (no direct
// Dispatch call) reaches the supervisor as an AssetReload.
func TestWatchWasmModule_TriggersAssetReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexer.wasm")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("SELECT version, schema_text").WillReturnError(sql.ErrNoRows)

	st := store.New(db, dialect.NewPostgres())
	sup := supervisor.New(st, dialect.NewPostgres(), nil, 10, telemetry.NopLogger{})

	id := supervisor.IndexerID{Namespace: "ns", Identifier: "idx"}
	var reloadCalls int
	require.NoError(t, sup.Register(context.Background(), supervisor.RegisterInput{
		ID:       id,
		Node:     watchTestNode{},
		Defaults: ingestion.DefaultDefaults(),
		Executor: watchTestHandler{},
		Reload: func(ctx context.Context) (handler.Executor, error) {
			reloadCalls++
			return watchTestHandler{}, nil
		},
	}))

	mock.ExpectQuery("SELECT version, schema_text").WillReturnError(sql.ErrNoRows)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	stop, err := watchWasmModule(ctx, sup, id, path, telemetry.NopLogger{})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	assert.Eventually(t, func() bool {
		return reloadCalls == 1
	}, time.Second, 5*time.Millisecond)
}
