// Package sqlgen generates SQL for different database providers.
package sqlgen

import (
	"fmt"
	"strings"
)

// Query represents a SQL query with arguments
type Query struct {
	SQL  string
	Args []interface{}
}

// Generator generates SQL for a specific provider
type Generator interface {
	Provider() string
	Quote(name string) string
	GenerateSelect(sel *Select) *Query
	GenerateCount(sel *Select) *Query
	GenerateInsert(table string, columns []string, values []interface{}, returning string) *Query
	GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query
	GenerateDelete(table string, where *WhereClause) *Query
	GenerateExplain(q *Query) *Query
}

// NewGenerator creates a new SQL generator for the given provider
func NewGenerator(provider string) Generator {
	switch provider {
	case "postgresql", "postgres":
		return NewPostgresGenerator()
	case "mysql":
		return NewMySQLGenerator()
	case "sqlite", "sqlite3":
		return NewSQLiteGenerator()
	default:
		return NewPostgresGenerator() // default to postgres
	}
}

// dialect holds what differs between providers. The generators embed it.
type dialect struct {
	provider    string
	quote       func(string) string
	placeholder func(int) string
	returning   bool
	likeEscape  string
	// maxLimit is rendered when OFFSET is used without LIMIT; empty means the
	// provider accepts a bare OFFSET.
	maxLimit string
	explain  string
}

// PostgresGenerator generates PostgreSQL SQL
type PostgresGenerator struct{ dialect }

// MySQLGenerator generates MySQL SQL
type MySQLGenerator struct{ dialect }

// SQLiteGenerator generates SQLite SQL
type SQLiteGenerator struct{ dialect }

// NewPostgresGenerator creates a PostgreSQL generator.
func NewPostgresGenerator() *PostgresGenerator {
	return &PostgresGenerator{dialect{
		provider:    "postgresql",
		quote:       quoteIdentifier,
		placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
		returning:   true,
		explain:     "EXPLAIN",
	}}
}

// NewMySQLGenerator creates a MySQL generator.
func NewMySQLGenerator() *MySQLGenerator {
	return &MySQLGenerator{dialect{
		provider:    "mysql",
		quote:       quoteIdentifierMySQL,
		placeholder: func(int) string { return "?" },
		maxLimit:    "18446744073709551615",
		explain:     "EXPLAIN",
	}}
}

// NewSQLiteGenerator creates a SQLite generator.
func NewSQLiteGenerator() *SQLiteGenerator {
	return &SQLiteGenerator{dialect{
		provider:    "sqlite",
		quote:       quoteIdentifierSQLite,
		placeholder: func(int) string { return "?" },
		likeEscape:  ` ESCAPE '\'`,
		maxLimit:    "-1",
		explain:     "EXPLAIN QUERY PLAN",
	}}
}

// Provider returns the provider name.
func (d *dialect) Provider() string { return d.provider }

// Quote quotes an identifier.
func (d *dialect) Quote(name string) string { return d.quote(name) }

// SupportsReturning reports whether INSERT ... RETURNING is available.
func (d *dialect) SupportsReturning() bool { return d.returning }

// column renders table.column, or just column when table is empty.
func (d *dialect) column(table, name string) string {
	if table == "" {
		return d.quote(name)
	}
	return d.quote(table) + "." + d.quote(name)
}

// GenerateExplain wraps q in the provider's EXPLAIN statement.
func (d *dialect) GenerateExplain(q *Query) *Query {
	return &Query{SQL: d.explain + " " + q.SQL, Args: q.Args}
}

// quoteIdentifier quotes an identifier for PostgreSQL
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdentifierMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteIdentifierSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
