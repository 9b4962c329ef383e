// Package schema compiles a parsed type-graph document into relational
// DDL, a foreign-key dictionary, and a reflection dictionary ready to
// persist to the metadata store.
package schema

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	fuelindexer "github.com/luizstacio/fuel-indexer"
	"github.com/luizstacio/fuel-indexer/dialect"
	"github.com/luizstacio/fuel-indexer/typegraph"
)

var identCaser = cases.Lower(language.Und)

// TableIdent derives a table name from a type-graph type name:
// inflect.Underscore splits camel/Pascal case into snake_case (e.g.
// "TxReceipt" -> "tx_receipt"), then identCaser folds case so schema
// authors' mixed-case type names still produce one deterministic
// identifier. Exported so querycompiler derives the exact same table
// name a query's FROM/JOIN must resolve against.
func TableIdent(typeName string) string {
	return identCaser.String(inflect.Underscore(typeName))
}

// ColumnIdent case-folds a field name into its column identifier.
// Unlike table names, field names keep their own word boundaries
// (GraphQL field naming convention is already lowerCamelCase), so only
// case-folding is needed here, not underscoring.
func ColumnIdent(fieldName string) string {
	return identCaser.String(fieldName)
}

// ObjectColumn is the mandatory trailing column every compiled table
// carries, holding the handler's opaque serialized entity.
const ObjectColumn = "object"

// Column is one compiled column of a Table.
type Column struct {
	Name     string
	Type     dialect.ColumnType
	Nullable bool
	Unique   bool
	// ForeignKey is non-nil when this column references another table.
	ForeignKey *FKRef
}

// FKRef names the (table, column) a foreign-key column references.
type FKRef struct {
	Table  string
	Column string
}

// Index is one compiled secondary index.
type Index struct {
	Name   string
	Table  string
	Column string
	Method string
}

// ForeignKey is one compiled foreign-key constraint.
type ForeignKey struct {
	Name        string
	Table       string
	Column      string
	RefTable    string
	RefColumn   string
}

// Table is one compiled relational table, in field-declaration order.
type Table struct {
	Name        string // bare table name, TableIdent of the type name
	Columns     []*Column
	ForeignKeys []*ForeignKey
	Indexes     []*Index
}

// PrimaryKey returns the table's "id" column, if any.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.Columns {
		if c.Name == "id" {
			return c
		}
	}
	return nil
}

// Compiled is the full output of compiling one type-graph document: the
// relational tables, the DDL statements to create them, the foreign-key
// dictionary, and the stable type-id for every compiled type.
type Compiled struct {
	Namespace string
	Identifier string
	Version   string
	QueryRoot string
	Tables    []*Table
	// Statements is DDL in deterministic emission order: optional
	// CREATE SCHEMA, CREATE TABLE per type, ALTER TABLE ADD CONSTRAINT
	// per foreign key, CREATE INDEX per index.
	Statements []string
	// ForeignKeys maps TableIdent(ownerType) -> fieldName -> (table, column).
	ForeignKeys map[string]map[string]FKRef
	// TypeIDs maps type name -> stable type-id.
	TypeIDs map[string]uint64
}

// Compile lowers doc into a Compiled schema for the given dialect. The
// document's query root type is never materialized as a table.
func Compile(doc *typegraph.Document, namespace, identifier, version string, dial dialect.DbDialect) (*Compiled, error) {
	c := &Compiled{
		Namespace:   namespace,
		Identifier:  identifier,
		Version:     version,
		QueryRoot:   doc.QueryRoot,
		ForeignKeys: make(map[string]map[string]FKRef),
		TypeIDs:     make(map[string]uint64),
	}

	for _, td := range doc.Types {
		if td.Name == doc.QueryRoot {
			continue
		}
		table, err := compileTable(doc, td)
		if err != nil {
			return nil, err
		}
		c.Tables = append(c.Tables, table)
		c.TypeIDs[td.Name] = typegraph.TypeID(namespace, td.Name)

		owner := TableIdent(td.Name)
		for _, col := range table.Columns {
			if col.ForeignKey == nil {
				continue
			}
			if c.ForeignKeys[owner] == nil {
				c.ForeignKeys[owner] = make(map[string]FKRef)
			}
			c.ForeignKeys[owner][col.Name] = FKRef{Table: col.ForeignKey.Table, Column: col.ForeignKey.Column}
		}
	}

	c.Statements = emitDDL(c, dial)
	return c, nil
}

func compileTable(doc *typegraph.Document, td *typegraph.TypeDef) (*Table, error) {
	table := &Table{Name: TableIdent(td.Name)}

	for _, fd := range td.Fields {
		col, fk, idx, err := compileField(doc, td, fd)
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, col)
		if fk != nil {
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}
		if idx != nil {
			table.Indexes = append(table.Indexes, idx)
		}
	}

	table.Columns = append(table.Columns, &Column{Name: ObjectColumn, Type: dialect.ColBytea, Nullable: false})
	return table, nil
}

func resolveTypeRef(doc *typegraph.Document, ref *typegraph.TypeRef, nullable bool, fieldName, ownerType string) (dialect.ColumnType, bool, string, error) {
	switch ref.Kind {
	case typegraph.KindNonNull:
		return resolveTypeRef(doc, ref.Of, false, fieldName, ownerType)
	case typegraph.KindList:
		return "", false, "", fuelindexer.NewSchemaCompileError(fuelindexer.ListFieldUnsupported, ownerType, fieldName)
	default: // KindNamed
		if ct, ok := dialect.PrimitiveColumnType(ref.Name); ok {
			return ct, nullable, "", nil
		}
		return "", nullable, ref.Name, nil
	}
}

func compileField(doc *typegraph.Document, owner *typegraph.TypeDef, fd *typegraph.FieldDef) (*Column, *ForeignKey, *Index, error) {
	ct, nullable, namedType, err := resolveTypeRef(doc, fd.Type, true, fd.Name, owner.Name)
	if err != nil {
		return nil, nil, nil, err
	}

	col := &Column{Name: ColumnIdent(fd.Name), Nullable: nullable, Unique: fd.Unique}

	if namedType == "" {
		col.Type = ct
		if idx := maybeIndex(owner, fd); idx != nil {
			return col, nil, idx, nil
		}
		return col, nil, nil, nil
	}

	// Foreign-key field: namedType must be a user-defined type.
	target := doc.Type(namedType)
	if target == nil {
		return nil, nil, nil, fuelindexer.NewSchemaCompileError(fuelindexer.UnresolvedType, owner.Name, fd.Name)
	}
	refColumnName := "id"
	if fd.HasJoinOn {
		refColumnName = fd.JoinOn
	}
	refField := target.Field(refColumnName)
	var refType dialect.ColumnType
	if refColumnName == "id" && refField == nil {
		refType = dialect.ColNumeric20 // implicit primary key
	} else if refField != nil {
		rt, _, _, err := resolveTypeRef(doc, refField.Type, true, refColumnName, target.Name)
		if err != nil {
			return nil, nil, nil, err
		}
		refType = rt
	} else {
		return nil, nil, nil, fuelindexer.NewSchemaCompileError(fuelindexer.UnresolvedType, owner.Name, fd.Name)
	}
	refColumnIdent := ColumnIdent(refColumnName)

	col.Type = refType
	col.ForeignKey = &FKRef{Table: TableIdent(namedType), Column: refColumnIdent}

	fk := &ForeignKey{
		Name:      fmt.Sprintf("fk_%s_%s__%s_%s", TableIdent(owner.Name), ColumnIdent(fd.Name), TableIdent(namedType), refColumnIdent),
		Table:     TableIdent(owner.Name),
		Column:    ColumnIdent(fd.Name),
		RefTable:  TableIdent(namedType),
		RefColumn: refColumnIdent,
	}

	idx := maybeIndex(owner, fd)
	return col, fk, idx, nil
}

func maybeIndex(owner *typegraph.TypeDef, fd *typegraph.FieldDef) *Index {
	if !fd.Indexed {
		return nil
	}
	table := TableIdent(owner.Name)
	column := ColumnIdent(fd.Name)
	return &Index{
		Name:   fmt.Sprintf("%s_%s_idx", table, column),
		Table:  table,
		Column: column,
		Method: "btree",
	}
}

func emitDDL(c *Compiled, dial dialect.DbDialect) []string {
	var stmts []string

	if createSchema := dial.CreateSchema(c.Namespace, c.Identifier); createSchema != "" {
		stmts = append(stmts, createSchema)
	}

	for _, t := range c.Tables {
		stmts = append(stmts, createTableSQL(c, t, dial))
	}

	for _, t := range c.Tables {
		for _, fk := range t.ForeignKeys {
			stmts = append(stmts, foreignKeySQL(c, fk, dial))
		}
	}

	for _, t := range c.Tables {
		for _, idx := range t.Indexes {
			stmts = append(stmts, indexSQL(c, idx, dial))
		}
	}

	return stmts
}

func createTableSQL(c *Compiled, t *Table, dial dialect.DbDialect) string {
	var cols []string
	for _, col := range t.Columns {
		cols = append(cols, columnSQL(col, dial))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		dial.TableName(c.Namespace, c.Identifier, t.Name),
		strings.Join(cols, ", "),
	)
}

func columnSQL(col *Column, dial dialect.DbDialect) string {
	var sb strings.Builder
	sb.WriteString(col.Name)
	sb.WriteByte(' ')
	sb.WriteString(dial.ColumnSQL(col.Type))
	if col.Name == "id" {
		sb.WriteString(" primary key")
	}
	if col.Unique {
		sb.WriteString(" unique")
	}
	if !col.Nullable {
		sb.WriteString(" not null")
	}
	return sb.String()
}

func foreignKeySQL(c *Compiled, fk *ForeignKey, dial dialect.DbDialect) string {
	return fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE NO ACTION ON UPDATE NO ACTION INITIALLY DEFERRED;",
		dial.TableName(c.Namespace, c.Identifier, fk.Table),
		fk.Name,
		fk.Column,
		dial.TableName(c.Namespace, c.Identifier, fk.RefTable),
		fk.RefColumn,
	)
}

func indexSQL(c *Compiled, idx *Index, dial dialect.DbDialect) string {
	return fmt.Sprintf(
		"CREATE INDEX %s ON %s USING %s (%s);",
		idx.Name,
		dial.TableName(c.Namespace, c.Identifier, idx.Table),
		idx.Method,
		idx.Column,
	)
}
