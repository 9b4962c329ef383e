// Command indexerd wires the schema compiler, persisted metadata store,
// handler host, ingestion scheduler, and supervisor into one running
// process. It parses no flags and reads no environment variables or
// YAML files itself (spec.md's Non-goals exclude that layer) — Run is
// the real entry point an embedding application calls with an
// already-loaded config.Config and a concrete ingestion.NodeClient;
// main below only demonstrates the wiring with a stub of each.
package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/luizstacio/fuel-indexer/config"
	"github.com/luizstacio/fuel-indexer/dialect"
	dialectsql "github.com/luizstacio/fuel-indexer/dialect/sql"
	"github.com/luizstacio/fuel-indexer/handler"
	"github.com/luizstacio/fuel-indexer/ingestion"
	"github.com/luizstacio/fuel-indexer/migrate"
	"github.com/luizstacio/fuel-indexer/schema"
	"github.com/luizstacio/fuel-indexer/schema/store"
	"github.com/luizstacio/fuel-indexer/supervisor"
	"github.com/luizstacio/fuel-indexer/telemetry"
	"github.com/luizstacio/fuel-indexer/typegraph"
)

// IndexerDeps carries the per-indexer dependencies config.IndexerConfig
// can't express as plain data: a native handler's Go function, and the
// ReloadFunc AssetReload calls to rebuild this indexer's executor.
type IndexerDeps struct {
	NativeHandler handler.HandleFunc
	Reload        supervisor.ReloadFunc
}

func indexerKey(namespace, identifier string) string {
	return namespace + "/" + identifier
}

// Run opens the control database, compiles and migrates every configured
// indexer's schema, registers each with a Supervisor, and services the
// admin mailbox until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, node ingestion.NodeClient, deps map[string]IndexerDeps, logger telemetry.Logger) error {
	driverName := sqlDriverName(cfg.Database.Dialect)
	db, err := sql.Open(driverName, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("indexerd: open database: %w", err)
	}
	defer db.Close()

	dial, err := dialect.ByName(cfg.Database.Dialect)
	if err != nil {
		return fmt.Errorf("indexerd: dialect: %w", err)
	}
	driver := dialectsql.NewStatsDriver(
		dialectsql.OpenDB(cfg.Database.Dialect, db),
		dialectsql.WithSlowQueryHook(func(_ context.Context, query string, args []any, dur time.Duration) {
			logger.Warn("slow query", "query", query, "duration", dur)
		}),
	)

	st := store.New(db, dial)
	if cfg.Database.RunMigrations {
		if err := st.EnsureControlTables(ctx); err != nil {
			return fmt.Errorf("indexerd: ensure control tables: %w", err)
		}
	}
	runner := migrate.New(driver)

	sup := supervisor.New(st, dial, driver, cfg.Defaults.ServiceRequestChannelSize, logger)
	defaults := toIngestionDefaults(cfg.Defaults)

	var stopWatches []func() error
	defer func() {
		for _, stop := range stopWatches {
			_ = stop()
		}
	}()

	for _, ic := range cfg.Indexers {
		ideps := deps[indexerKey(ic.Namespace, ic.Identifier)]
		if err := bootstrapIndexer(ctx, st, runner, dial, driver, sup, node, defaults, ic, ideps, logger); err != nil {
			return err
		}

		// A native indexer has no module file on disk to watch; a wasm
		// one with no Reload hook can't act on AssetReload anyway, so
		// only indexers opting into both get a live watch.
		if ic.Native || ideps.Reload == nil {
			continue
		}
		id := supervisor.IndexerID{Namespace: ic.Namespace, Identifier: ic.Identifier}
		stop, err := watchWasmModule(ctx, sup, id, ic.WasmModulePath, logger)
		if err != nil {
			return fmt.Errorf("indexerd: watch wasm module for %s/%s: %w", ic.Namespace, ic.Identifier, err)
		}
		stopWatches = append(stopWatches, stop)
	}

	logger.Info("supervisor started", "indexers", len(cfg.Indexers))
	return sup.Run(ctx)
}

// bootstrapIndexer parses and compiles one indexer's schema, applies its
// DDL, persists the compiled version, builds its handler executor, and
// registers it with sup.
func bootstrapIndexer(
	ctx context.Context,
	st *store.Store,
	runner *migrate.Runner,
	dial dialect.DbDialect,
	driver dialect.Driver,
	sup *supervisor.Supervisor,
	node ingestion.NodeClient,
	defaults ingestion.Defaults,
	ic config.IndexerConfig,
	ideps IndexerDeps,
	logger telemetry.Logger,
) error {
	doc, err := typegraph.Parse(ic.SchemaText)
	if err != nil {
		return fmt.Errorf("indexerd: parse schema for %s/%s: %w", ic.Namespace, ic.Identifier, err)
	}

	version := schemaVersion(ic.SchemaText)
	compiled, err := schema.Compile(doc, ic.Namespace, ic.Identifier, version, dial)
	if err != nil {
		return fmt.Errorf("indexerd: compile schema for %s/%s: %w", ic.Namespace, ic.Identifier, err)
	}

	if err := runner.Apply(ctx, compiled); err != nil {
		return fmt.Errorf("indexerd: migrate %s/%s: %w", ic.Namespace, ic.Identifier, err)
	}
	if err := st.Persist(ctx, doc, compiled, ic.SchemaText); err != nil {
		return fmt.Errorf("indexerd: persist %s/%s: %w", ic.Namespace, ic.Identifier, err)
	}

	exec, err := buildExecutor(ctx, driver, dial, ic, ideps)
	if err != nil {
		return fmt.Errorf("indexerd: build executor for %s/%s: %w", ic.Namespace, ic.Identifier, err)
	}

	logger.Info("registering indexer", "namespace", ic.Namespace, "identifier", ic.Identifier, "start_block", ic.StartBlock)
	return sup.Register(ctx, supervisor.RegisterInput{
		ID:         supervisor.IndexerID{Namespace: ic.Namespace, Identifier: ic.Identifier},
		Node:       node,
		Defaults:   defaults,
		Executor:   exec,
		StartBlock: ic.StartBlock,
		Reload:     ideps.Reload,
	})
}

func buildExecutor(ctx context.Context, driver dialect.Driver, dial dialect.DbDialect, ic config.IndexerConfig, ideps IndexerDeps) (handler.Executor, error) {
	if ic.Native {
		return handler.NewNative(driver, dial, ic.Namespace, ic.Identifier, ideps.NativeHandler), nil
	}
	wasmBytes, err := os.ReadFile(ic.WasmModulePath)
	if err != nil {
		return nil, fmt.Errorf("read wasm module %s: %w", ic.WasmModulePath, err)
	}
	return handler.NewWasm(ctx, wasmBytes, driver, dial, ic.Namespace, ic.Identifier)
}

// schemaVersion derives a stable version string from schema text, the
// same sha256-digest-then-truncate approach
// original_source/.../utils.rs::sha256_digest uses for content hashing.
func schemaVersion(schemaText string) string {
	sum := sha256.Sum256([]byte(schemaText))
	return hex.EncodeToString(sum[:])[:16]
}

func toIngestionDefaults(d config.Defaults) ingestion.Defaults {
	return ingestion.Defaults{
		PageSize:                  d.PageSize,
		DelayForServiceErr:        d.DelayForServiceErr,
		DelayForEmptyPage:         d.DelayForEmptyPage,
		MaxEmptyBlockRequests:     d.MaxEmptyBlockRequests,
		IndexFailedCalls:          d.IndexFailedCalls,
		StopIdleIndexers:          d.StopIdleIndexers,
		ServiceRequestChannelSize: d.ServiceRequestChannelSize,
	}
}

// sqlDriverName maps a dialect.DbDialect name to the database/sql driver
// name registered for it. modernc.org/sqlite registers itself as
// "sqlite", not "sqlite3", so the two names diverge for that one dialect.
func sqlDriverName(dialectName string) string {
	if dialectName == dialect.SQLite {
		return "sqlite"
	}
	return dialectName
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := telemetry.NopLogger{}

	// A real deployment loads cfg from its own flags/YAML/env layer and
	// supplies a NodeClient against its Fuel node; neither is built here
	// (spec.md's Non-goals exclude both the config loader and any
	// transport implementation). This stub config runs no indexers.
	cfg := config.Config{
		Database: config.DatabaseConfig{Dialect: dialect.Postgres, DSN: ""},
		Defaults: config.Defaults{
			PageSize:                  10,
			MaxEmptyBlockRequests:     10,
			IndexFailedCalls:          10,
			ServiceRequestChannelSize: 100,
		},
	}

	if err := Run(ctx, cfg, nil, nil, logger); err != nil {
		logger.Error("indexerd exited", "error", err)
		os.Exit(1)
	}
}
