package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/multilingual-go/internal/fixtures"
	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
)

func orderClause(t *testing.T, q *Query) string {
	t.Helper()
	sql := render(t, q).SQL
	i := strings.Index(sql, "ORDER BY ")
	require.GreaterOrEqual(t, i, 0, sql)
	return sql[i:]
}

func TestOrderingTranslatedAttribute(t *testing.T) {
	reg := fixtures.Articles()

	q := newQuery(t, reg, "Category")
	require.NoError(t, q.AddOrdering("name"))
	assert.Equal(t, `ORDER BY "name_en" ASC`, orderClause(t, q))

	q = newQuery(t, reg, "Category")
	require.NoError(t, q.SetLanguage("pl"))
	require.NoError(t, q.AddOrdering("-name", "name_en"))
	assert.Equal(t, `ORDER BY "name_pl" DESC, "name_en" ASC`, orderClause(t, q))
}

func TestOrderingAcrossRelation(t *testing.T) {
	q := newQuery(t, fixtures.Articles(), "Article")
	require.NoError(t, q.AddOrdering("category__name", "-creator"))

	assert.Equal(t, `ORDER BY "articles_category_translation_en"."name" ASC, "articles_article"."creator_id" DESC`, orderClause(t, q))
	assert.NotContains(t, joinAliases(t, q), "auth_user", "ordering by a relation without ordering uses the foreign key column")
}

func TestOrderingFollowsRelatedDefault(t *testing.T) {
	reg := fixtures.Articles()
	cat, err := reg.Model("Category")
	require.NoError(t, err)
	cat.Ordering = []string{"-name"}

	q := newQuery(t, reg, "Article")
	require.NoError(t, q.AddOrdering("-category"))
	assert.Equal(t, `ORDER BY "articles_category_translation_en"."name" ASC`, orderClause(t, q))

	cat.Ordering = []string{"parent"}
	q = newQuery(t, reg, "Category")
	err = q.AddOrdering("parent")
	assert.ErrorIs(t, err, ErrInvalidOrdering)
}

func TestDefaultOrdering(t *testing.T) {
	reg := fixtures.Articles()
	article, err := reg.Model("Article")
	require.NoError(t, err)
	article.Ordering = []string{"-created"}

	q := newQuery(t, reg, "Article")
	assert.Equal(t, `ORDER BY "articles_article"."created" DESC`, orderClause(t, q))
	assert.False(t, q.Ordered(), "default ordering is applied to a copy")

	require.NoError(t, q.AddOrdering("id"))
	assert.Equal(t, `ORDER BY "articles_article"."id" ASC`, orderClause(t, q))

	q.ClearOrdering(true)
	assert.NotContains(t, render(t, q).SQL, "ORDER BY")
}

func TestRandomOrderingRejected(t *testing.T) {
	q := newQuery(t, fixtures.Articles(), "Category")
	assert.ErrorIs(t, q.AddOrdering("?"), ErrInvalidOrdering)
}

func TestLimits(t *testing.T) {
	q := newQuery(t, fixtures.Articles(), "Category")
	low, high := 1, 3
	q.SetLimits(&low, &high)

	out := render(t, q)
	assert.True(t, strings.HasSuffix(out.SQL, "LIMIT ? OFFSET ?"), out.SQL)
	assert.Equal(t, []interface{}{2, 1}, out.Args[len(out.Args)-2:])

	// Slicing a slice stays inside the first window.
	one := 1
	q.SetLimits(&one, nil)
	sel, err := q.Select()
	require.NoError(t, err)
	assert.Equal(t, 2, *sel.Offset)
	assert.Equal(t, 1, *sel.Limit)
}

func TestCompileCount(t *testing.T) {
	q := newQuery(t, fixtures.Articles(), "Category")
	require.NoError(t, q.AddFilter(ast.Lookup("name__contains", "1")))
	require.NoError(t, q.AddOrdering("name"))

	out, err := q.CompileCount(sqlgen.NewSQLiteGenerator())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.SQL, `SELECT COUNT(*) FROM (SELECT "articles_category"."id" FROM "articles_category" LEFT OUTER JOIN`), out.SQL)
	assert.NotContains(t, out.SQL, "ORDER BY")
	assert.Equal(t, []interface{}{1, 2, 3, "%1%"}, out.Args)
}

func TestResolutionErrors(t *testing.T) {
	reg := fixtures.Articles()

	t.Run("unknown field lists choices", func(t *testing.T) {
		q := newQuery(t, reg, "Category")
		err := q.AddFilter(ast.Eq("nonexistent", 1))
		require.ErrorIs(t, err, ErrFieldNotFound)

		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "nonexistent", fe.Name)
		assert.Contains(t, fe.Choices, "name_pl")
		assert.Contains(t, fe.Choices, "articles")
		assert.Contains(t, fe.Choices, "children")
	})

	t.Run("path past a translated attribute", func(t *testing.T) {
		q := newQuery(t, reg, "Category")
		err := q.AddFilter(ast.Eq("name.foo", 1))
		require.ErrorIs(t, err, ErrUnresolvablePath)

		var pe *PathError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "foo", pe.Name)
	})

	t.Run("path past a scalar", func(t *testing.T) {
		q := newQuery(t, reg, "Article")
		err := q.AddFilter(ast.Eq("created.year", 2008))
		assert.ErrorIs(t, err, ErrUnresolvablePath)
	})

	t.Run("multi-valued join when only single-valued allowed", func(t *testing.T) {
		q := newQuery(t, reg, "Article")
		_, err := q.SetupJoins(JoinRequest{Names: []string{"category", "articles"}})
		require.ErrorIs(t, err, ErrMultiJoin)

		var me *MultiJoinError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, 2, me.Pos)
		assert.Equal(t, 0, q.Plan().RefCount("articles_category"), "joins made before the failure are released")
	})

	t.Run("bad lookup value", func(t *testing.T) {
		q := newQuery(t, reg, "Category")
		assert.ErrorIs(t, q.AddFilter(ast.Lookup("name__contains", 1)), ErrInvalidLookup)
		assert.ErrorIs(t, q.AddFilter(ast.Lookup("id__in", 1)), ErrInvalidLookup)
	})
}

func TestCompileExpression(t *testing.T) {
	c := NewCompiler("postgres", fixtures.Articles())

	out, err := c.CompileExpression("Article", `category.name = "cat 1" or category.name_pl contains "2"`, "pl", "-title")
	require.NoError(t, err)
	assert.Contains(t, out.SQL, `WHERE ("articles_category_translation_pl"."name" = $5 OR "articles_category_translation_pl"."name" LIKE $6)`)
	assert.Contains(t, out.SQL, `ORDER BY "title_pl" DESC`)
	assert.Equal(t, []interface{}{1, 2, 3, 2, "cat 1", "%2%"}, out.Args)

	_, err = c.CompileExpression("Article", `title ~ "x"`, nil)
	assert.ErrorIs(t, err, ErrCompilationFailed)

	_, err = c.CompileExpression("Nope", "", nil)
	assert.Error(t, err)
}
