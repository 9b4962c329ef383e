package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migration is one applied schema version's DDL, recorded for replay and
// audit. Unlike the teacher's jennifer-templated generated migrations
// (compiler/gen/sql/versioned_migration.go), the SQL here comes from the
// schema compiler's in-memory Compiled.Statements rather than .sql files
// on disk.
type Migration struct {
	Version   string
	Name      string
	SQL       []string
	AppliedAt time.Time
}

// Runner applies Migrations to a database and records them in a
// migrations control table, so a given (namespace, identifier, version)
// is never re-applied.
type Runner struct {
	db    *sql.DB
	table string
}

// NewRunner returns a Runner using the default "schema_migrations" table.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db, table: "schema_migrations"}
}

// EnsureTable creates the migrations control table if it doesn't exist.
func (r *Runner) EnsureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		namespace varchar(128) not null,
		identifier varchar(128) not null,
		version varchar(64) not null,
		applied_at timestamptz not null,
		primary key (namespace, identifier, version)
	)`, r.table))
	if err != nil {
		return fmt.Errorf("store: ensure migrations table: %w", err)
	}
	return nil
}

// Applied reports whether (namespace, identifier, version) has already
// been applied.
func (r *Runner) Applied(ctx context.Context, namespace, identifier, version string) (bool, error) {
	var count int
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE namespace=$1 AND identifier=$2 AND version=$3", r.table),
		namespace, identifier, version,
	)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("store: check migration applied: %w", err)
	}
	return count > 0, nil
}

// Apply runs every statement of m inside one transaction and records the
// migration, unless it has already been applied.
func (r *Runner) Apply(ctx context.Context, namespace, identifier string, m *Migration) error {
	applied, err := r.Applied(ctx, namespace, identifier, m.Version)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: apply migration: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.SQL {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: apply migration %s: %w", m.Version, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (namespace, identifier, version, applied_at) VALUES ($1,$2,$3,$4)", r.table),
		namespace, identifier, m.Version, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("store: record migration %s: %w", m.Version, err)
	}

	return tx.Commit()
}
