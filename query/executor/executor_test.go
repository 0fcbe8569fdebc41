package executor

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/multilingual-go/internal/fixtures"
	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/compiler"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range fixtures.SQLiteDDL {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func seedCategory(t *testing.T, e *Executor, names map[int]string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := e.Insert(ctx, "articles_category", nil, nil, "id")
	require.NoError(t, err)
	for lang, name := range names {
		_, err := e.Insert(ctx, "articles_category_translation",
			[]string{"name", "language_id", "master_id"}, []any{name, lang, id}, "id")
		require.NoError(t, err)
	}
	return id.(int64)
}

func TestRowsAndCount(t *testing.T) {
	ctx := context.Background()
	e := NewExecutor(openDB(t), "sqlite")
	defer e.ClearStmtCache()

	first := seedCategory(t, e, map[int]string{1: "cat 1", 2: "kat 1"})
	seedCategory(t, e, map[int]string{1: "cat 2"})

	q, err := compiler.New(fixtures.Articles(), "Category")
	require.NoError(t, err)
	require.NoError(t, q.AddOrdering("id"))

	var rows []Row
	for row, err := range e.Rows(ctx, q) {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0]["id"])
	assert.Equal(t, "cat 1", rows[0]["name_en"])
	assert.Equal(t, "kat 1", rows[0]["name_pl"])
	assert.Nil(t, rows[1]["name_pl"])
	assert.Nil(t, rows[1]["_articles_category_translation_pl"], "missing translation row")

	require.NoError(t, q.AddFilter(ast.Lookup("name__contains", "1")))
	n, err := e.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Iteration can stop early and be restarted.
	seen := 0
	for range e.Rows(ctx, q) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestUpdateDelete(t *testing.T) {
	ctx := context.Background()
	e := NewExecutor(openDB(t), "sqlite")
	id := seedCategory(t, e, map[int]string{1: "old"})

	where := sqlgen.NewWhereClause()
	where.AddCondition(sqlgen.Condition{Field: "master_id", Operator: "=", Value: id})
	n, err := e.Update(ctx, "articles_category_translation", []string{"name"}, []any{"new"}, where)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = e.Delete(ctx, "articles_category_translation", where)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = e.Delete(ctx, "articles_category", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "a delete without conditions removes nothing")
}

func TestInsertWithExplicitKey(t *testing.T) {
	e := NewExecutor(openDB(t), "sqlite")
	pk, err := e.Insert(context.Background(), "articles_modelwithcustompk", []string{"custompk"}, []any{"key"}, "custompk")
	require.NoError(t, err)
	assert.Equal(t, "key", pk)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	e := NewExecutor(openDB(t), "sqlite")
	boom := errors.New("boom")

	err := e.WithTx(ctx, nil, func(tx *Executor) error {
		seedCategory(t, tx, map[int]string{1: "kept"})
		nested := tx.WithTx(ctx, nil, func(inner *Executor) error {
			seedCategory(t, inner, map[int]string{1: "rolled back"})
			return boom
		})
		assert.ErrorIs(t, nested, boom)
		return nil
	})
	require.NoError(t, err)

	err = e.WithTx(ctx, nil, func(tx *Executor) error {
		seedCategory(t, tx, map[int]string{1: "discarded"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	q, err := compiler.New(fixtures.Articles(), "Category")
	require.NoError(t, err)
	n, err := e.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestValidateColumns(t *testing.T) {
	expected := []compiler.ResultColumn{{Name: "id"}, {Name: "name_en"}}
	assert.NoError(t, validateColumns([]string{"id", "name_en"}, expected))
	assert.ErrorIs(t, validateColumns([]string{"id"}, expected), errColumnMismatch)
	assert.ErrorIs(t, validateColumns([]string{"id", "name"}, expected), errColumnMismatch)
}
