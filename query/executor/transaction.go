// Package executor provides transaction-aware query execution.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/multilingual-go/internal/debug"
)

// TxFunc runs inside a transaction with an executor bound to it.
type TxFunc func(tx *Executor) error

// WithTx runs fn in a transaction. The transaction is rolled back when fn
// returns an error or panics and committed otherwise. Inside a transaction
// WithTx nests by savepoint.
func (e *Executor) WithTx(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error {
	if tx, ok := e.db.(*sql.Tx); ok {
		return e.savepoint(ctx, tx, fn)
	}
	beginner, ok := e.db.(interface {
		BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	})
	if !ok {
		return fmt.Errorf("connection %T cannot begin transactions", e.db)
	}

	sqlTx, err := beginner.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txe := e.bind(sqlTx, 0)

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txe); err != nil {
		txe.ClearStmtCache()
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	txe.ClearStmtCache()
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (e *Executor) savepoint(ctx context.Context, tx *sql.Tx, fn TxFunc) error {
	depth := e.depth + 1
	name := fmt.Sprintf("sp_%d", depth)
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	debug.Debug("executor: savepoint", "name", name)

	if err := fn(e.bind(tx, depth)); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (e *Executor) bind(tx *sql.Tx, depth int) *Executor {
	return &Executor{
		db:        tx,
		provider:  e.provider,
		generator: e.generator,
		stmtCache: make(map[string]*sql.Stmt),
		depth:     depth,
	}
}
