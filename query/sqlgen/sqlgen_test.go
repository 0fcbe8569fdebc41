package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func translatedSelect() *Select {
	where := NewWhereClause()
	or := NewWhereClause()
	or.SetOperator("OR")
	or.AddCondition(Condition{Table: "articles_category_translation_en", Field: "name", Operator: "LIKE", Value: "%2%"})
	or.AddCondition(Condition{Table: "articles_category_translation_pl", Field: "name", Operator: "LIKE", Value: "%kat%"})
	where.AddGroup(or)

	return &Select{
		Table: "articles_category",
		Columns: []Column{
			{Table: "articles_category", Name: "id"},
			{Table: "articles_category_translation_en", Name: "name", As: "name_en"},
		},
		Joins: []Join{{
			Type:        LeftOuter,
			Table:       "articles_category_translation",
			Alias:       "articles_category_translation_en",
			LeftAlias:   "articles_category",
			LeftColumn:  "id",
			RightColumn: "master_id",
			Extra:       []Condition{{Field: "language_id", Operator: "=", Value: 1}},
		}, {
			Type:        LeftOuter,
			Table:       "articles_category_translation",
			Alias:       "articles_category_translation_pl",
			LeftAlias:   "articles_category",
			LeftColumn:  "id",
			RightColumn: "master_id",
			Extra:       []Condition{{Field: "language_id", Operator: "=", Value: 2}},
		}},
		Where:   where,
		OrderBy: []OrderBy{{Field: "name_en", Direction: "DESC"}},
		Limit:   intPtr(10),
	}
}

func TestGenerateSelectPostgres(t *testing.T) {
	q := NewGenerator("postgres").GenerateSelect(translatedSelect())

	assert.Equal(t,
		`SELECT "articles_category"."id", "articles_category_translation_en"."name" AS "name_en" `+
			`FROM "articles_category" `+
			`LEFT OUTER JOIN "articles_category_translation" "articles_category_translation_en" ON ("articles_category"."id" = "articles_category_translation_en"."master_id" AND "articles_category_translation_en"."language_id" = $1) `+
			`LEFT OUTER JOIN "articles_category_translation" "articles_category_translation_pl" ON ("articles_category"."id" = "articles_category_translation_pl"."master_id" AND "articles_category_translation_pl"."language_id" = $2) `+
			`WHERE ("articles_category_translation_en"."name" LIKE $3 OR "articles_category_translation_pl"."name" LIKE $4) `+
			`ORDER BY "name_en" DESC LIMIT $5`,
		q.SQL)
	assert.Equal(t, []interface{}{1, 2, "%2%", "%kat%", 10}, q.Args)
}

func TestGenerateSelectDialects(t *testing.T) {
	t.Run("mysql", func(t *testing.T) {
		q := NewGenerator("mysql").GenerateSelect(&Select{Table: "t", Offset: intPtr(5)})
		assert.Equal(t, "SELECT `t`.* FROM `t` LIMIT 18446744073709551615 OFFSET ?", q.SQL)
		assert.Equal(t, []interface{}{5}, q.Args)
	})

	t.Run("sqlite", func(t *testing.T) {
		sel := &Select{
			Table:    "t",
			Distinct: true,
			Columns:  []Column{{Table: "t", Name: "a"}},
			Where: &WhereClause{Conditions: []Condition{
				{Table: "t", Field: "a", Operator: "LIKE", Value: "x%"},
			}},
			Offset: intPtr(2),
		}
		q := NewGenerator("sqlite").GenerateSelect(sel)
		assert.Equal(t, `SELECT DISTINCT "t"."a" FROM "t" WHERE "t"."a" LIKE ? ESCAPE '\' LIMIT -1 OFFSET ?`, q.SQL)
	})

	t.Run("postgres offset only", func(t *testing.T) {
		q := NewGenerator("postgresql").GenerateSelect(&Select{Table: "t", Alias: "T1", Offset: intPtr(3)})
		assert.Equal(t, `SELECT "T1".* FROM "t" "T1" OFFSET $1`, q.SQL)
	})
}

func TestConditions(t *testing.T) {
	g := NewSQLiteGenerator()

	cases := []struct {
		name string
		cond Condition
		sql  string
		args int
	}{
		{"in", Condition{Field: "id", Operator: "IN", Value: []interface{}{1, 2}}, `"id" IN (?, ?)`, 2},
		{"empty in", Condition{Field: "id", Operator: "IN", Value: []interface{}{}}, `1 = 0`, 0},
		{"empty not in", Condition{Field: "id", Operator: "NOT IN", Value: []interface{}{}}, `1 = 1`, 0},
		{"is null", Condition{Table: "a", Field: "b", Operator: "IS NULL"}, `"a"."b" IS NULL`, 0},
		{"ilike", Condition{Field: "n", Operator: "ILIKE", Value: "%x%"}, `UPPER("n") LIKE UPPER(?) ESCAPE '\'`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx := 1
			sql, args := g.buildCondition(tc.cond, &idx)
			assert.Equal(t, tc.sql, sql)
			assert.Len(t, args, tc.args)
		})
	}
}

func TestSubqueryCondition(t *testing.T) {
	sub := &Select{
		Table:   "articles_article",
		Columns: []Column{{Table: "articles_article", Name: "id"}},
		Where: &WhereClause{Conditions: []Condition{
			{Table: "articles_article", Field: "category_id", Operator: "=", Value: 7},
		}},
	}
	where := NewWhereClause()
	where.SetNot(true)
	where.AddCondition(Condition{Table: "articles_article", Field: "id", Operator: "IN", Value: sub})

	q := NewPostgresGenerator().GenerateSelect(&Select{
		Table:   "articles_article",
		Columns: []Column{{Table: "articles_article", Name: "id"}},
		Where:   &WhereClause{Conditions: []Condition{{Table: "articles_article", Field: "id", Operator: ">", Value: 1}}, Groups: []*WhereClause{where}},
	})
	assert.Equal(t,
		`SELECT "articles_article"."id" FROM "articles_article" WHERE "articles_article"."id" > $1 AND (NOT ("articles_article"."id" IN (SELECT "articles_article"."id" FROM "articles_article" WHERE "articles_article"."category_id" = $2)))`,
		q.SQL)
	assert.Equal(t, []interface{}{1, 7}, q.Args)
}

func TestGenerateCount(t *testing.T) {
	q := NewSQLiteGenerator().GenerateCount(translatedSelect())
	assert.Contains(t, q.SQL, `SELECT COUNT(*) FROM (SELECT "articles_category"."id" FROM "articles_category" LEFT OUTER JOIN`)
	assert.NotContains(t, q.SQL, "ORDER BY")
	assert.Contains(t, q.SQL, `) "subquery"`)
}

func TestMutations(t *testing.T) {
	t.Run("insert returning", func(t *testing.T) {
		q := NewPostgresGenerator().GenerateInsert("t", []string{"a", "b"}, []interface{}{1, "x"}, "id")
		assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES ($1, $2) RETURNING "id"`, q.SQL)
	})

	t.Run("insert without returning support", func(t *testing.T) {
		q := NewSQLiteGenerator().GenerateInsert("t", nil, nil, "id")
		assert.Equal(t, `INSERT INTO "t" DEFAULT VALUES`, q.SQL)

		q = NewMySQLGenerator().GenerateInsert("t", nil, nil, "id")
		assert.Equal(t, "INSERT INTO `t` () VALUES ()", q.SQL)
	})

	t.Run("update", func(t *testing.T) {
		where := NewWhereClause()
		where.AddCondition(Condition{Field: "id", Operator: "=", Value: 4})
		q := NewPostgresGenerator().GenerateUpdate("t", []string{"a"}, []interface{}{"v"}, where)
		assert.Equal(t, `UPDATE "t" SET "a" = $1 WHERE "id" = $2`, q.SQL)
		assert.Equal(t, []interface{}{"v", 4}, q.Args)
	})

	t.Run("delete requires where", func(t *testing.T) {
		q := NewMySQLGenerator().GenerateDelete("t", nil)
		assert.Equal(t, "DELETE FROM `t` WHERE 1=0", q.SQL)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, EscapeLike("50% off_now"))
}

func TestExplain(t *testing.T) {
	q := NewSQLiteGenerator().GenerateExplain(&Query{SQL: "SELECT 1"})
	assert.Equal(t, "EXPLAIN QUERY PLAN SELECT 1", q.SQL)
}
