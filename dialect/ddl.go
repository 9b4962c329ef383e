package dialect

import "fmt"

// ColumnType is a dialect-neutral SQL column type produced by the schema
// compiler's column derivation step.
type ColumnType string

const (
	ColSmallInt    ColumnType = "smallint"
	ColInteger     ColumnType = "integer"
	ColNumeric20   ColumnType = "numeric(20,0)"
	ColNumeric39   ColumnType = "numeric(39,0)"
	ColNumeric78   ColumnType = "numeric(78,0)"
	ColVarchar16   ColumnType = "varchar(16)"
	ColVarchar32   ColumnType = "varchar(32)"
	ColVarchar64   ColumnType = "varchar(64)"
	ColVarchar255  ColumnType = "varchar(255)"
	ColBoolean     ColumnType = "boolean"
	ColJSON        ColumnType = "jsonb"
	ColTimestamp   ColumnType = "timestamptz"
	ColBytea       ColumnType = "bytea"
)

// PrimitiveColumnType maps a primitive typegraph scalar name to its
// dialect-neutral SQL column type, grounded in fuel-indexer-schema's
// tables.rs column-type fixtures.
func PrimitiveColumnType(name string) (ColumnType, bool) {
	switch name {
	case "ID":
		return ColNumeric20, true
	case "Address", "Bytes32", "Bytes64", "AssetId", "ContractId", "Signature":
		return ColVarchar64, true
	case "Bytes4":
		return ColVarchar16, true
	case "Bytes8":
		return ColVarchar32, true
	case "UInt8", "Int8":
		return ColSmallInt, true
	case "UInt16", "Int16":
		return ColInteger, true
	case "UInt32", "Int32", "UInt64", "Int64":
		return ColNumeric20, true
	case "UInt128", "Int128":
		return ColNumeric39, true
	case "UInt256":
		return ColNumeric78, true
	case "Boolean":
		return ColBoolean, true
	case "Charfield":
		return ColVarchar255, true
	case "Json":
		return ColJSON, true
	case "Timestamp", "Tai64Timestamp":
		return ColTimestamp, true
	default:
		return "", false
	}
}

// DbDialect isolates the per-database differences the schema and query
// compilers need: table namespacing, identifier quoting, and fragment
// syntax for statements whose shape differs across engines.
type DbDialect interface {
	// Name returns the dialect identifier (Postgres, MySQL, SQLite).
	Name() string
	// TableName returns the namespaced table name "ns_id.table", or the
	// dialect-appropriate equivalent for engines without schemas.
	TableName(namespace, identifier, table string) string
	// ColumnSQL renders a ColumnType to this dialect's type keyword.
	ColumnSQL(t ColumnType) string
	// Quote quotes a bare identifier.
	Quote(ident string) string
	// CreateSchema renders "CREATE SCHEMA IF NOT EXISTS ns_id", or ""
	// for dialects with no schema concept (SQLite).
	CreateSchema(namespace, identifier string) string
}

// Postgres dialect: native schemas, native JSON/UUID types, deferred FKs.
type postgresDialect struct{}

func NewPostgres() DbDialect { return postgresDialect{} }

func (postgresDialect) Name() string { return Postgres }

func (postgresDialect) TableName(namespace, identifier, table string) string {
	return fmt.Sprintf("%s_%s.%s", namespace, identifier, table)
}

func (postgresDialect) ColumnSQL(t ColumnType) string { return string(t) }

func (postgresDialect) Quote(ident string) string { return `"` + ident + `"` }

func (postgresDialect) CreateSchema(namespace, identifier string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s_%s", namespace, identifier)
}

// MySQL dialect: schemas map to databases; no "jsonb"/"bytea"/"timestamptz".
type mysqlDialect struct{}

func NewMySQL() DbDialect { return mysqlDialect{} }

func (mysqlDialect) Name() string { return MySQL }

func (mysqlDialect) TableName(namespace, identifier, table string) string {
	return fmt.Sprintf("%s_%s_%s", namespace, identifier, table)
}

func (mysqlDialect) ColumnSQL(t ColumnType) string {
	switch t {
	case ColJSON:
		return "json"
	case ColTimestamp:
		return "datetime"
	case ColBytea:
		return "blob"
	default:
		return string(t)
	}
}

func (mysqlDialect) Quote(ident string) string { return "`" + ident + "`" }

func (mysqlDialect) CreateSchema(namespace, identifier string) string {
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s_%s", namespace, identifier)
}

// SQLite dialect: no schema concept, no native jsonb/bytea/timestamptz.
type sqliteDialect struct{}

func NewSQLite() DbDialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return SQLite }

func (sqliteDialect) TableName(namespace, identifier, table string) string {
	return fmt.Sprintf("%s_%s_%s", namespace, identifier, table)
}

func (sqliteDialect) ColumnSQL(t ColumnType) string {
	switch t {
	case ColJSON:
		return "text"
	case ColTimestamp:
		return "text"
	case ColBytea:
		return "blob"
	case ColNumeric20, ColNumeric39, ColNumeric78:
		return "text"
	default:
		return string(t)
	}
}

func (sqliteDialect) Quote(ident string) string { return `"` + ident + `"` }

// CreateSchema is a no-op on SQLite, which has no schema/database concept.
func (sqliteDialect) CreateSchema(namespace, identifier string) string { return "" }

// ByName returns the DbDialect implementation for a dialect name.
func ByName(name string) (DbDialect, error) {
	switch name {
	case Postgres:
		return NewPostgres(), nil
	case MySQL:
		return NewMySQL(), nil
	case SQLite:
		return NewSQLite(), nil
	default:
		return nil, fmt.Errorf("dialect: unsupported dialect %q", name)
	}
}
