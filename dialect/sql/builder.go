package sql

import (
	"strconv"
	"strings"

	"github.com/luizstacio/fuel-indexer/dialect"
)

// Builder is the base for all SQL statement builders. It accumulates a
// statement string along with bind arguments and knows how to quote
// identifiers for the target dialect.
type Builder struct {
	sb        strings.Builder
	args      []any
	dialect   string
	total     int
	qualifier string
}

// Dialect returns a Builder bound to the given dialect.
func Dialect(d string) *Builder {
	return &Builder{dialect: d}
}

// Query returns the accumulated query string and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

func (b *Builder) write(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

func (b *Builder) writeByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Ident writes a quoted identifier, splitting on "." so that
// "t.col" is quoted as "t"."col".
func (b *Builder) Ident(name string) *Builder {
	if name == "" {
		return b
	}
	if name == "*" {
		return b.write(name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if i > 0 {
			b.writeByte('.')
		}
		b.quote(p)
	}
	return b
}

func (b *Builder) quote(s string) {
	switch b.dialect {
	case dialect.MySQL:
		b.sb.WriteByte('`')
		b.sb.WriteString(s)
		b.sb.WriteByte('`')
	default:
		b.sb.WriteByte('"')
		b.sb.WriteString(s)
		b.sb.WriteByte('"')
	}
}

// Arg appends a bind argument and writes its placeholder.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	b.total++
	switch b.dialect {
	case dialect.Postgres:
		b.write("$" + strconv.Itoa(b.total))
	default:
		b.write("?")
	}
	return b
}

// Predicate writes one WHERE/ON/JOIN condition fragment into a Builder.
// querycompiler renders its querylanguage.P trees into these.
type Predicate func(*Builder)

// P appends a rendered predicate expression.
func (b *Builder) P(p Predicate) *Builder {
	p(b)
	return b
}

// --- Selector ---------------------------------------------------------

// OrderDirection is the direction of an ORDER BY clause.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// Selector builds a SELECT statement.
type Selector struct {
	Builder
	ctx        string
	columns    []string
	from       string
	fromAs     string
	joins      []joinClause
	where      Predicate
	order      []orderClause
	limit      *int
	offset     *int
	forUpdate  bool
	groupBy    []string
}

type joinClause struct {
	kind  string
	table string
	alias string
	on    Predicate
}

type orderClause struct {
	column string
	dir    OrderDirection
}

// Select starts a new Selector with the given dialect.
func Select(d string, columns ...string) *Selector {
	s := &Selector{columns: columns}
	s.dialect = d
	return s
}

// From sets the FROM table.
func (s *Selector) From(table string) *Selector {
	s.from = table
	return s
}

// As sets an alias for the FROM table.
func (s *Selector) As(alias string) *Selector {
	s.fromAs = alias
	return s
}

// Join appends an INNER JOIN clause. alias may be empty, in which case
// the join target is referenced by its own name.
func (s *Selector) Join(table, alias string, on Predicate) *Selector {
	s.joins = append(s.joins, joinClause{kind: "JOIN", table: table, alias: alias, on: on})
	return s
}

// LeftJoin appends a LEFT JOIN clause. alias may be empty, in which case
// the join target is referenced by its own name.
func (s *Selector) LeftJoin(table, alias string, on Predicate) *Selector {
	s.joins = append(s.joins, joinClause{kind: "LEFT JOIN", table: table, alias: alias, on: on})
	return s
}

// Where sets the predicate for the WHERE clause.
func (s *Selector) Where(p Predicate) *Selector {
	s.where = p
	return s
}

// OrderBy appends an ORDER BY column with direction.
func (s *Selector) OrderBy(column string, dir OrderDirection) *Selector {
	s.order = append(s.order, orderClause{column: column, dir: dir})
	return s
}

// GroupBy appends a GROUP BY column.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// ForUpdate appends a FOR UPDATE row lock, ignored on dialects that don't
// support it (SQLite).
func (s *Selector) ForUpdate() *Selector {
	s.forUpdate = true
	return s
}

// Query renders the SELECT statement and its bind arguments.
func (s *Selector) Query() (string, []any) {
	s.sb.Reset()
	s.args = nil
	s.total = 0
	s.write("SELECT ")
	if len(s.columns) == 0 {
		s.write("*")
	} else {
		for i, c := range s.columns {
			if i > 0 {
				s.write(", ")
			}
			s.writeColumn(c)
		}
	}
	s.write(" FROM ")
	s.Ident(s.from)
	if s.fromAs != "" {
		s.write(" AS ")
		s.Ident(s.fromAs)
	}
	for _, j := range s.joins {
		s.write(" ").write(j.kind).write(" ")
		s.Ident(j.table)
		if j.alias != "" {
			s.write(" AS ")
			s.Ident(j.alias)
		}
		s.write(" ON ")
		s.P(j.on)
	}
	if s.where != nil {
		s.write(" WHERE ")
		s.P(s.where)
	}
	if len(s.groupBy) > 0 {
		s.write(" GROUP BY ")
		for i, c := range s.groupBy {
			if i > 0 {
				s.write(", ")
			}
			s.Ident(c)
		}
	}
	if len(s.order) > 0 {
		s.write(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				s.write(", ")
			}
			s.Ident(o.column)
			s.write(" ").write(string(o.dir))
		}
	}
	if s.limit != nil {
		s.write(" LIMIT ").write(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		s.write(" OFFSET ").write(strconv.Itoa(*s.offset))
	}
	if s.forUpdate && s.dialect != dialect.SQLite {
		s.write(" FOR UPDATE")
	}
	return s.sb.String(), s.args
}

func (s *Selector) writeColumn(c string) {
	if strings.Contains(c, "(") || c == "*" {
		s.write(c)
		return
	}
	s.Ident(c)
}

// --- Predicate helpers --------------------------------------------------

// EQ returns a Predicate rendering "column = ?".
func EQ(column string, v any) Predicate {
	return binary(column, "=", v)
}

// NEQ returns a Predicate rendering "column <> ?".
func NEQ(column string, v any) Predicate {
	return binary(column, "<>", v)
}

// GT returns a Predicate rendering "column > ?".
func GT(column string, v any) Predicate {
	return binary(column, ">", v)
}

// GTE returns a Predicate rendering "column >= ?".
func GTE(column string, v any) Predicate {
	return binary(column, ">=", v)
}

// LT returns a Predicate rendering "column < ?".
func LT(column string, v any) Predicate {
	return binary(column, "<", v)
}

// LTE returns a Predicate rendering "column <= ?".
func LTE(column string, v any) Predicate {
	return binary(column, "<=", v)
}

func binary(column, op string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(column)
		b.write(" " + op + " ")
		b.Arg(v)
	}
}

// In returns a Predicate rendering "column IN (?, ?, ...)".
func In(column string, values ...any) Predicate {
	return func(b *Builder) {
		if len(values) == 0 {
			b.write("FALSE")
			return
		}
		b.Ident(column)
		b.write(" IN (")
		for i, v := range values {
			if i > 0 {
				b.write(", ")
			}
			b.Arg(v)
		}
		b.writeByte(')')
	}
}

// Between returns a Predicate rendering "column BETWEEN ? AND ?".
func Between(column string, lo, hi any) Predicate {
	return func(b *Builder) {
		b.Ident(column)
		b.write(" BETWEEN ")
		b.Arg(lo)
		b.write(" AND ")
		b.Arg(hi)
	}
}

// Contains returns a Predicate rendering "column LIKE '%v%'".
func Contains(column string, v string) Predicate {
	return like(column, "%"+v+"%")
}

// HasPrefix returns a Predicate rendering "column LIKE 'v%'".
func HasPrefix(column string, v string) Predicate {
	return like(column, v+"%")
}

// HasSuffix returns a Predicate rendering "column LIKE '%v'".
func HasSuffix(column string, v string) Predicate {
	return like(column, "%"+v)
}

// Like returns a Predicate rendering "column LIKE ?" with pattern used
// verbatim (the caller supplies its own % wildcards).
func Like(column, pattern string) Predicate {
	return like(column, pattern)
}

func like(column, pattern string) Predicate {
	return func(b *Builder) {
		b.Ident(column)
		b.write(" LIKE ")
		b.Arg(pattern)
	}
}

// IsNull returns a Predicate rendering "column IS NULL".
func IsNull(column string) Predicate {
	return func(b *Builder) {
		b.Ident(column)
		b.write(" IS NULL")
	}
}

// NotNull returns a Predicate rendering "column IS NOT NULL".
func NotNull(column string) Predicate {
	return func(b *Builder) {
		b.Ident(column)
		b.write(" IS NOT NULL")
	}
}

// And returns a Predicate that combines predicates with AND, parenthesized.
func And(ps ...Predicate) Predicate {
	return join(ps, " AND ")
}

// Or returns a Predicate that combines predicates with OR, parenthesized.
func Or(ps ...Predicate) Predicate {
	return join(ps, " OR ")
}

func join(ps []Predicate, sep string) Predicate {
	return func(b *Builder) {
		if len(ps) == 1 {
			ps[0](b)
			return
		}
		b.writeByte('(')
		for i, p := range ps {
			if i > 0 {
				b.write(sep)
			}
			p(b)
		}
		b.writeByte(')')
	}
}

// Not returns a Predicate negating p.
func Not(p Predicate) Predicate {
	return func(b *Builder) {
		b.write("NOT (")
		p(b)
		b.writeByte(')')
	}
}

// Raw returns a Predicate that writes s verbatim, for fragments the
// builder has no direct representation for (e.g. a subquery).
func Raw(s string) Predicate {
	return func(b *Builder) {
		b.write(s)
	}
}

// --- Insert / Update / Delete --------------------------------------------

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    [][]any
	returning []string
	conflict  string
}

// Insert starts a new InsertBuilder for the given table.
func Insert(d, table string) *InsertBuilder {
	ib := &InsertBuilder{table: table}
	ib.dialect = d
	return ib
}

// Columns sets the column list.
func (i *InsertBuilder) Columns(cols ...string) *InsertBuilder {
	i.columns = cols
	return i
}

// Values appends a row of values, positionally matching Columns.
func (i *InsertBuilder) Values(vals ...any) *InsertBuilder {
	i.values = append(i.values, vals)
	return i
}

// Returning sets the RETURNING column list (Postgres/SQLite only).
func (i *InsertBuilder) Returning(cols ...string) *InsertBuilder {
	i.returning = cols
	return i
}

// OnConflictDoNothing sets an ON CONFLICT DO NOTHING clause (Postgres/SQLite).
func (i *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	i.conflict = "DO NOTHING"
	return i
}

// Query renders the INSERT statement and its bind arguments.
func (i *InsertBuilder) Query() (string, []any) {
	i.sb.Reset()
	i.args = nil
	i.total = 0
	i.write("INSERT INTO ")
	i.Ident(i.table)
	i.writeByte(' ')
	if len(i.columns) > 0 {
		i.writeByte('(')
		for idx, c := range i.columns {
			if idx > 0 {
				i.write(", ")
			}
			i.Ident(c)
		}
		i.writeByte(')')
	}
	i.write(" VALUES ")
	for r, row := range i.values {
		if r > 0 {
			i.write(", ")
		}
		i.writeByte('(')
		for c, v := range row {
			if c > 0 {
				i.write(", ")
			}
			i.Arg(v)
		}
		i.writeByte(')')
	}
	if i.conflict != "" && i.dialect != dialect.MySQL {
		i.write(" ON CONFLICT ").write(i.conflict)
	}
	if len(i.returning) > 0 && i.dialect != dialect.MySQL {
		i.write(" RETURNING ")
		for idx, c := range i.returning {
			if idx > 0 {
				i.write(", ")
			}
			i.Ident(c)
		}
	}
	return i.sb.String(), i.args
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	Builder
	table string
	sets  []setClause
	where Predicate
}

type setClause struct {
	column string
	value  any
}

// Update starts a new UpdateBuilder for the given table.
func Update(d, table string) *UpdateBuilder {
	ub := &UpdateBuilder{table: table}
	ub.dialect = d
	return ub
}

// Set appends a column assignment.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.sets = append(u.sets, setClause{column: column, value: v})
	return u
}

// Where sets the predicate for the WHERE clause.
func (u *UpdateBuilder) Where(p Predicate) *UpdateBuilder {
	u.where = p
	return u
}

// Query renders the UPDATE statement and its bind arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	u.sb.Reset()
	u.args = nil
	u.total = 0
	u.write("UPDATE ")
	u.Ident(u.table)
	u.write(" SET ")
	for i, s := range u.sets {
		if i > 0 {
			u.write(", ")
		}
		u.Ident(s.column)
		u.write(" = ")
		u.Arg(s.value)
	}
	if u.where != nil {
		u.write(" WHERE ")
		u.P(u.where)
	}
	return u.sb.String(), u.args
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	Builder
	table string
	where Predicate
}

// Delete starts a new DeleteBuilder for the given table.
func Delete(d, table string) *DeleteBuilder {
	db := &DeleteBuilder{table: table}
	db.dialect = d
	return db
}

// Where sets the predicate for the WHERE clause.
func (d *DeleteBuilder) Where(p Predicate) *DeleteBuilder {
	d.where = p
	return d
}

// Query renders the DELETE statement and its bind arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	d.sb.Reset()
	d.args = nil
	d.total = 0
	d.write("DELETE FROM ")
	d.Ident(d.table)
	if d.where != nil {
		d.write(" WHERE ")
		d.P(d.where)
	}
	return d.sb.String(), d.args
}
