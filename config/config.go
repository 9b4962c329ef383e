// Package config defines the plain value types this module's packages
// are wired from. Loading them from flags, environment variables, or a
// YAML file is the caller's job (spec.md's Non-goals exclude a CLI
// argument parser and a YAML/env config loader) — this package only
// names the shape, grounded on
// original_source/packages/fuel-indexer-lib/src/config/mod.rs's
// IndexerConfig/FuelNodeConfig/DatabaseConfig.
package config

import "time"

// DatabaseConfig names the control-schema database connection, shared
// across every registered indexer per spec.md §5's "database connection
// pool is shared across all indexers."
type DatabaseConfig struct {
	Dialect       string // "postgres", "mysql", or "sqlite3"
	DSN           string
	RunMigrations bool
}

// FuelNodeConfig names the upstream node the ingestion scheduler pages
// blocks from.
type FuelNodeConfig struct {
	Host string
	Port string
}

// IndexerConfig describes one indexer to register at startup, the Go
// analogue of a fuel-indexer manifest (namespace/identifier/start_block
// plus the compiled schema text and handler module this repo's
// persisted store and handler host need).
type IndexerConfig struct {
	Namespace  string
	Identifier string
	StartBlock uint64

	// SchemaText is the declarative schema for typegraph.Parse +
	// schema.Compile, persisted via schema/store.Store.Persist.
	SchemaText string

	// Native is set for an in-process handler; WasmModulePath is set for
	// a sandboxed one. Exactly one should be non-zero.
	Native         bool
	WasmModulePath string
}

// Defaults mirrors ingestion.Defaults' shape for override from a loaded
// config file, without this package depending on ingestion (config sits
// below every other package in the import graph).
type Defaults struct {
	PageSize                  int
	DelayForServiceErr        time.Duration
	DelayForEmptyPage         time.Duration
	MaxEmptyBlockRequests     int
	IndexFailedCalls          int
	StopIdleIndexers          bool
	ServiceRequestChannelSize int
}

// Config is the complete set of values cmd/indexerd needs to start the
// supervisor, passed by value — this repo never reads an env var or a
// file itself.
type Config struct {
	Verbose  bool
	Database DatabaseConfig
	FuelNode FuelNodeConfig
	Defaults Defaults
	Indexers []IndexerConfig
}
