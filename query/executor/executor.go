// Package executor runs compiled queries against a database/sql connection
// and maps result rows to column maps.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/satishbabariya/multilingual-go/internal/debug"
	"github.com/satishbabariya/multilingual-go/query/compiler"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
)

// DBTX is the subset of *sql.DB and *sql.Tx the executor needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Row maps result column names to scanned values. Text columns are returned
// as strings.
type Row map[string]any

// Executor executes queries and maps results
type Executor struct {
	db        DBTX
	provider  string
	generator sqlgen.Generator
	stmtCache map[string]*sql.Stmt
	cacheMu   sync.RWMutex
	// depth is the savepoint nesting level inside a transaction.
	depth int
}

// NewExecutor creates a new query executor
func NewExecutor(db DBTX, provider string) *Executor {
	return &Executor{
		db:        db,
		provider:  provider,
		generator: sqlgen.NewGenerator(provider),
		stmtCache: make(map[string]*sql.Stmt),
	}
}

// Provider returns the database provider name.
func (e *Executor) Provider() string { return e.generator.Provider() }

// Generator returns the SQL generator of the provider.
func (e *Executor) Generator() sqlgen.Generator { return e.generator }

// getCachedStmt gets a cached prepared statement or creates a new one
func (e *Executor) getCachedStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	e.cacheMu.RLock()
	stmt, ok := e.stmtCache[query]
	e.cacheMu.RUnlock()

	if ok && stmt != nil {
		return stmt, nil
	}

	stmt, err := e.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	e.cacheMu.Lock()
	if cached, ok := e.stmtCache[query]; ok {
		e.cacheMu.Unlock()
		stmt.Close()
		return cached, nil
	}
	e.stmtCache[query] = stmt
	e.cacheMu.Unlock()

	return stmt, nil
}

// ClearStmtCache clears the prepared statement cache
func (e *Executor) ClearStmtCache() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	for _, stmt := range e.stmtCache {
		stmt.Close()
	}
	e.stmtCache = make(map[string]*sql.Stmt)
}

// Query runs a rendered SELECT through the statement cache.
func (e *Executor) Query(ctx context.Context, q *sqlgen.Query) (*sql.Rows, error) {
	debug.Debug("executor: query", "sql", q.SQL, "args", len(q.Args))
	stmt, err := e.getCachedStmt(ctx, q.SQL)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	return rows, nil
}

// Exec runs a rendered statement that returns no rows.
func (e *Executor) Exec(ctx context.Context, q *sqlgen.Query) (sql.Result, error) {
	debug.Debug("executor: exec", "sql", q.SQL, "args", len(q.Args))
	result, err := e.db.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("exec failed: %w", err)
	}
	return result, nil
}

// Rows compiles q and yields its rows lazily. Every call runs the query
// again; stopping early closes the cursor.
func (e *Executor) Rows(ctx context.Context, q *compiler.Query) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		compiled, err := q.Compile(e.generator)
		if err != nil {
			yield(nil, err)
			return
		}
		rows, err := e.Query(ctx, compiled)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			yield(nil, fmt.Errorf("failed to get columns: %w", err))
			return
		}
		if err := validateColumns(columns, q.ResultColumns()); err != nil {
			yield(nil, err)
			return
		}

		for rows.Next() {
			row, err := scanRow(rows, columns)
			if !yield(row, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Count returns the number of rows q matches.
func (e *Executor) Count(ctx context.Context, q *compiler.Query) (int64, error) {
	compiled, err := q.CompileCount(e.generator)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := e.db.QueryRowContext(ctx, compiled.SQL, compiled.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

// Insert inserts one row and returns the value of pkColumn. When the value is
// among values it is returned as is; otherwise it is read back with RETURNING
// or the driver's last insert id.
func (e *Executor) Insert(ctx context.Context, table string, columns []string, values []any, pkColumn string) (any, error) {
	for i, col := range columns {
		if col == pkColumn && values[i] != nil {
			if _, err := e.Exec(ctx, e.generator.GenerateInsert(table, columns, values, "")); err != nil {
				return nil, fmt.Errorf("insert into %s failed: %w", table, err)
			}
			return values[i], nil
		}
	}

	if returner, ok := e.generator.(interface{ SupportsReturning() bool }); ok && returner.SupportsReturning() {
		q := e.generator.GenerateInsert(table, columns, values, pkColumn)
		debug.Debug("executor: insert returning", "sql", q.SQL)
		var id any
		if err := e.db.QueryRowContext(ctx, q.SQL, q.Args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert into %s failed: %w", table, err)
		}
		return normalize(id), nil
	}

	result, err := e.Exec(ctx, e.generator.GenerateInsert(table, columns, values, ""))
	if err != nil {
		return nil, fmt.Errorf("insert into %s failed: %w", table, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert into %s: no generated key: %w", table, err)
	}
	return id, nil
}

// Update executes an UPDATE and returns the number of affected rows.
func (e *Executor) Update(ctx context.Context, table string, columns []string, values []any, where *sqlgen.WhereClause) (int64, error) {
	result, err := e.Exec(ctx, e.generator.GenerateUpdate(table, columns, values, where))
	if err != nil {
		return 0, fmt.Errorf("update failed: %w", err)
	}
	return result.RowsAffected()
}

// Delete executes a DELETE and returns the number of affected rows.
func (e *Executor) Delete(ctx context.Context, table string, where *sqlgen.WhereClause) (int64, error) {
	result, err := e.Exec(ctx, e.generator.GenerateDelete(table, where))
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return result.RowsAffected()
}

func scanRow(rows *sql.Rows, columns []string) (Row, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	row := make(Row, len(columns))
	for i, col := range columns {
		row[col] = normalize(values[i])
	}
	return row, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var errColumnMismatch = errors.New("result columns do not match the query")
