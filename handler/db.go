package handler

import (
	"context"
	"fmt"

	"github.com/luizstacio/fuel-indexer/dialect"
	sqlbuilder "github.com/luizstacio/fuel-indexer/dialect/sql"
)

// DB is the session an Executor gets for the lifetime of one HandleEvents
// call: a single dialect.Tx plus the entity helpers a handler function
// needs (get/put/delete by primary key), scoped to one indexer's
// namespaced tables. Wasm handlers reach the same operations through the
// host imports in abi.go; Native handlers call these methods directly.
type DB struct {
	tx         dialect.Tx
	dial       dialect.DbDialect
	namespace  string
	identifier string
}

// NewDB wraps tx for the given indexer's namespace.
func NewDB(tx dialect.Tx, dial dialect.DbDialect, namespace, identifier string) *DB {
	return &DB{tx: tx, dial: dial, namespace: namespace, identifier: identifier}
}

func (db *DB) table(name string) string {
	return db.dial.TableName(db.namespace, db.identifier, name)
}

// Get fetches the row with the given id from table, returning its columns
// as a map. A missing row reports (nil, nil).
func (db *DB) Get(ctx context.Context, table string, id any) (map[string]any, error) {
	query, args := sqlbuilder.Select(db.dial.Name(), "*").
		From(db.table(table)).
		Where(sqlbuilder.EQ("id", id)).
		Limit(1).
		Query()

	var rows sqlbuilder.Rows
	if err := db.tx.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("handler: get %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("handler: scan %s: %w", table, err)
	}

	out := make(map[string]any, len(cols))
	for i, c := range cols {
		out[c] = vals[i]
	}
	return out, nil
}

// Put upserts a row into table, keyed by its "id" column: updates the
// existing row in place, or inserts one if none exists.
func (db *DB) Put(ctx context.Context, table string, row map[string]any) error {
	id, ok := row["id"]
	if !ok {
		return fmt.Errorf("handler: put %s: row has no id column", table)
	}

	ub := sqlbuilder.Update(db.dial.Name(), db.table(table))
	for c, v := range row {
		if c == "id" {
			continue
		}
		ub.Set(c, v)
	}
	query, args := ub.Where(sqlbuilder.EQ("id", id)).Query()

	var res sqlbuilder.Result
	if err := db.tx.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("handler: put %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	cols := make([]string, 0, len(row))
	vals := make([]any, 0, len(row))
	for c, v := range row {
		cols = append(cols, c)
		vals = append(vals, v)
	}
	query, args = sqlbuilder.Insert(db.dial.Name(), db.table(table)).
		Columns(cols...).
		Values(vals...).
		OnConflictDoNothing().
		Query()

	if err := db.tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("handler: put %s: %w", table, err)
	}
	return nil
}

// Delete removes the row with the given id from table.
func (db *DB) Delete(ctx context.Context, table string, id any) error {
	query, args := sqlbuilder.Delete(db.dial.Name(), db.table(table)).
		Where(sqlbuilder.EQ("id", id)).
		Query()

	if err := db.tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("handler: delete %s: %w", table, err)
	}
	return nil
}

// Commit commits the underlying transaction.
func (db *DB) Commit() error { return db.tx.Commit() }

// Rollback aborts the underlying transaction.
func (db *DB) Rollback() error { return db.tx.Rollback() }
