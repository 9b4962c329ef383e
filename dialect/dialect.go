// Package dialect provides the database dialect abstraction shared by the
// schema compiler, query compiler, and handler host.
package dialect

import "context"

// Supported dialect identifiers.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite3"
)

// Driver is the interface every dialect-specific connection must implement.
type Driver interface {
	// Exec executes a query that doesn't return rows.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows.
	Query(ctx context.Context, query string, args, v any) error
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transaction for executing statements that must be rolled back
// or committed together, such as a schema migration or a handler's batch.
type Tx interface {
	Driver
	// Commit commits the transaction.
	Commit() error
	// Rollback aborts the transaction.
	Rollback() error
}

// ExecQuerier wraps the methods for executing and querying without a
// dialect-specific connection, implemented by both Driver and Tx.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}
