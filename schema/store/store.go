package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/schema"
	"github.com/luizstacio/fuel-indexer/typegraph"
)

// Control schema table names, living in a service-owned control schema
// per spec.md §6 ("Persisted metadata layout").
const (
	TableGraphRoot   = "graph_root"
	TableRootColumns = "root_columns"
	TableTypeIDs     = "type_ids"
	TableColumns     = "columns"
)

// GraphRoot is one persisted schema version's root record.
type GraphRoot struct {
	Version    string
	Namespace  string
	Identifier string
	Query      string
	SchemaText string
}

// RootColumn names one top-level field exposed by the query root.
type RootColumn struct {
	Version     string
	Namespace   string
	Identifier  string
	Name        string
	GraphqlType string
}

// TypeID records one compiled type's stable identifier and table name.
type TypeID struct {
	ID          uint64
	Version     string
	Namespace   string
	Identifier  string
	GraphqlName string
	TableName   string
}

// StoredColumn records one compiled column of a type for later reflection.
type StoredColumn struct {
	TypeID      uint64
	Position    int
	Name        string
	SQLType     string
	GraphqlType string
	Nullable    bool
	Unique      bool
}

// Store persists compiled schema versions and reloads Reflection objects.
type Store struct {
	db  *sql.DB
	dia dialect.DbDialect
}

// New returns a Store bound to db and the control schema's dialect.
func New(db *sql.DB, dia dialect.DbDialect) *Store {
	return &Store{db: db, dia: dia}
}

// EnsureControlTables creates the control schema tables if they don't
// already exist, run once at supervisor startup.
func (s *Store) EnsureControlTables(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			version varchar(64) not null,
			namespace varchar(128) not null,
			identifier varchar(128) not null,
			query varchar(128) not null,
			schema_text text not null,
			primary key (namespace, identifier, version)
		)`, TableGraphRoot),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			version varchar(64) not null,
			namespace varchar(128) not null,
			identifier varchar(128) not null,
			name varchar(128) not null,
			graphql_type varchar(128) not null
		)`, TableRootColumns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id numeric(20,0) not null,
			version varchar(64) not null,
			namespace varchar(128) not null,
			identifier varchar(128) not null,
			graphql_name varchar(128) not null,
			table_name varchar(128) not null,
			primary key (id, version)
		)`, TableTypeIDs),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			type_id numeric(20,0) not null,
			position integer not null,
			name varchar(128) not null,
			sql_type varchar(64) not null,
			graphql_type varchar(128) not null,
			nullable boolean not null,
			unique_col boolean not null,
			ref_table varchar(128),
			ref_column varchar(128),
			primary key (type_id, position)
		)`, TableColumns),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure control tables: %w", err)
		}
	}
	return nil
}

// Persist records one compiled schema version: the graph root, its
// top-level fields, every compiled type's id, and every compiled column.
// It does not run the DDL itself; see migrate.Runner for that.
func (s *Store) Persist(ctx context.Context, doc *typegraph.Document, c *schema.Compiled, schemaText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: persist: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (version, namespace, identifier, query, schema_text) VALUES ($1,$2,$3,$4,$5)", TableGraphRoot),
		c.Version, c.Namespace, c.Identifier, c.QueryRoot, schemaText,
	); err != nil {
		return fmt.Errorf("store: persist: graph_root: %w", err)
	}

	if root := doc.Type(doc.QueryRoot); root != nil {
		for _, f := range root.Fields {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s (version, namespace, identifier, name, graphql_type) VALUES ($1,$2,$3,$4,$5)", TableRootColumns),
				c.Version, c.Namespace, c.Identifier, f.Name, f.Type.NamedType(),
			); err != nil {
				return fmt.Errorf("store: persist: root_columns: %w", err)
			}
		}
	}

	for _, t := range c.Tables {
		typeID := c.TypeIDs[typeNameForTable(doc, t.Name)]
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (id, version, namespace, identifier, graphql_name, table_name) VALUES ($1,$2,$3,$4,$5,$6)", TableTypeIDs),
			typeID, c.Version, c.Namespace, c.Identifier, typeNameForTable(doc, t.Name), t.Name,
		); err != nil {
			return fmt.Errorf("store: persist: type_ids: %w", err)
		}
		for pos, col := range t.Columns {
			var refTable, refColumn *string
			if col.ForeignKey != nil {
				refTable, refColumn = &col.ForeignKey.Table, &col.ForeignKey.Column
			}
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s (type_id, position, name, sql_type, graphql_type, nullable, unique_col, ref_table, ref_column) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)", TableColumns),
				typeID, pos, col.Name, string(col.Type), graphqlTypeOf(doc, t.Name, col.Name), col.Nullable, col.Unique, refTable, refColumn,
			); err != nil {
				return fmt.Errorf("store: persist: columns: %w", err)
			}
		}
	}

	return tx.Commit()
}

func typeNameForTable(doc *typegraph.Document, table string) string {
	for _, t := range doc.Types {
		if t.Name != doc.QueryRoot && schema.TableIdent(t.Name) == table {
			return t.Name
		}
	}
	return table
}

func graphqlTypeOf(doc *typegraph.Document, table, column string) string {
	name := typeNameForTable(doc, table)
	td := doc.Type(name)
	if td == nil {
		return column
	}
	if column == schema.ObjectColumn {
		return "Bytes"
	}
	if fd := td.Field(column); fd != nil {
		return fd.Type.NamedType()
	}
	return column
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// LoadSchemaText returns the declarative schema text and version most
// recently persisted for (namespace, identifier), for re-compiling the
// currently-live schema ahead of an AssetReload safety check.
func (s *Store) LoadSchemaText(ctx context.Context, namespace, identifier string) (schemaText, version string, err error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT version, schema_text FROM %s WHERE namespace=$1 AND identifier=$2 ORDER BY version DESC LIMIT 1", TableGraphRoot),
		namespace, identifier,
	)
	if err := row.Scan(&version, &schemaText); err != nil {
		return "", "", fmt.Errorf("store: load schema text: %w", err)
	}
	return schemaText, version, nil
}

// Load rebuilds the Reflection for the latest version of (namespace,
// identifier) by reading the control tables.
func (s *Store) Load(ctx context.Context, namespace, identifier string) (*Reflection, error) {
	var version, query string
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT version, query FROM %s WHERE namespace=$1 AND identifier=$2 ORDER BY version DESC LIMIT 1", TableGraphRoot),
		namespace, identifier,
	)
	if err := row.Scan(&version, &query); err != nil {
		return nil, fmt.Errorf("store: load: graph_root: %w", err)
	}

	refl := &Reflection{
		Namespace:   namespace,
		Identifier:  identifier,
		Version:     version,
		Query:       query,
		Types:       map[string]bool{query: true},
		Fields:      map[string]map[string]string{query: {}},
		ForeignKeys: map[string]map[string]FK{},
	}

	rootRows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT name, graphql_type FROM %s WHERE namespace=$1 AND identifier=$2 AND version=$3", TableRootColumns),
		namespace, identifier, version,
	)
	if err != nil {
		return nil, fmt.Errorf("store: load: root_columns: %w", err)
	}
	for rootRows.Next() {
		var name, graphqlType string
		if err := rootRows.Scan(&name, &graphqlType); err != nil {
			rootRows.Close()
			return nil, fmt.Errorf("store: load: scan root_columns: %w", err)
		}
		refl.Fields[query][name] = graphqlType
	}
	rootRows.Close()

	typeRows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, graphql_name, table_name FROM %s WHERE namespace=$1 AND identifier=$2 AND version=$3", TableTypeIDs),
		namespace, identifier, version,
	)
	if err != nil {
		return nil, fmt.Errorf("store: load: type_ids: %w", err)
	}
	defer typeRows.Close()

	type typeRow struct {
		id        uint64
		name      string
		tableName string
	}
	var types []typeRow
	for typeRows.Next() {
		var tr typeRow
		if err := typeRows.Scan(&tr.id, &tr.name, &tr.tableName); err != nil {
			return nil, fmt.Errorf("store: load: scan type_ids: %w", err)
		}
		types = append(types, tr)
		refl.Types[tr.name] = true
		refl.Fields[tr.name] = map[string]string{}
	}

	for _, tr := range types {
		colRows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT name, graphql_type, ref_table, ref_column FROM %s WHERE type_id=$1 ORDER BY position", TableColumns),
			tr.id,
		)
		if err != nil {
			return nil, fmt.Errorf("store: load: columns: %w", err)
		}
		for colRows.Next() {
			var name, graphqlType string
			var refTable, refColumn *string
			if err := colRows.Scan(&name, &graphqlType, &refTable, &refColumn); err != nil {
				colRows.Close()
				return nil, fmt.Errorf("store: load: scan columns: %w", err)
			}
			if name == schema.ObjectColumn {
				continue
			}
			refl.Fields[tr.name][name] = graphqlType
			if refTable != nil && refColumn != nil {
				if refl.ForeignKeys[tr.tableName] == nil {
					refl.ForeignKeys[tr.tableName] = map[string]FK{}
				}
				refl.ForeignKeys[tr.tableName][name] = FK{Table: *refTable, Column: *refColumn}
			}
		}
		colRows.Close()
	}

	return refl, nil
}
