package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/multilingual-go/cli/internal/ui"
	"github.com/satishbabariya/multilingual-go/languages"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
	"github.com/satishbabariya/multilingual-go/schema"
)

func articlesRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	doc, err := schema.Load(afero.NewOsFs(), filepath.Join("..", "..", "schema", "testdata", "articles.yaml"))
	require.NoError(t, err)
	reg, err := doc.Build(nil)
	require.NoError(t, err)
	return reg
}

func TestBuildExplain(t *testing.T) {
	reg := articlesRegistry(t)

	report, q, err := buildExplain(reg, explainOptions{
		Model:      "Category",
		Provider:   "sqlite",
		Expression: `name_en contains "cat"`,
		Ordering:   []string{"name"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Category", report.Model)
	assert.Equal(t, "pl", report.Language)
	assert.Equal(t, q.SQL, report.SQL)
	assert.Contains(t, report.SQL, `LEFT OUTER JOIN "articles_category_translation" "articles_category_translation_en"`)
	assert.Contains(t, report.SQL, `WHERE "articles_category_translation_en"."name" LIKE ?`)
	assert.Contains(t, report.SQL, `ORDER BY "name_pl" ASC`)
	assert.Contains(t, report.Args, "%cat%")
	assert.NotEmpty(t, report.Indexes)
	for _, j := range report.Joins {
		assert.Equal(t, sqlgen.LeftOuter, j.Type)
	}
}

func TestBuildExplainLanguage(t *testing.T) {
	reg := articlesRegistry(t)

	report, _, err := buildExplain(reg, explainOptions{
		Model:      "Category",
		Language:   "en",
		Provider:   "postgresql",
		Expression: `name = "x"`,
	})
	require.NoError(t, err)
	assert.Equal(t, "en", report.Language)
	assert.Contains(t, report.SQL, `WHERE "articles_category_translation_en"."name" = $`)

	_, _, err = buildExplain(reg, explainOptions{Model: "Category", Language: "fr", Provider: "sqlite"})
	assert.ErrorIs(t, err, languages.ErrUnknownLanguage)

	_, _, err = buildExplain(reg, explainOptions{Model: "Nope", Provider: "sqlite"})
	assert.Error(t, err)

	_, _, err = buildExplain(reg, explainOptions{Model: "Category", Provider: "sqlite", Expression: `colour = "red"`})
	assert.Error(t, err)
}

func TestExplainMarkdown(t *testing.T) {
	reg := articlesRegistry(t)
	report, _, err := buildExplain(reg, explainOptions{
		Model:      "Article",
		Provider:   "sqlite",
		Expression: `category__name_en = "x"`,
	})
	require.NoError(t, err)

	md := report.Markdown()
	assert.Contains(t, md, "# Article (pl)")
	assert.Contains(t, md, "```sql\nSELECT")
	assert.Contains(t, md, "## Joins")
	assert.Contains(t, md, "| 1 |")
}

func TestLanguageRows(t *testing.T) {
	langs := languages.MustNewRegistry(
		languages.Definition{Code: "en", Name: "English"},
		languages.Definition{Code: "zh-cn", Name: "Simplified Chinese"},
	)
	require.NoError(t, langs.SetDefault("zh-cn"))

	assert.Equal(t, [][]string{
		{"1", "en", "English", "_en", ""},
		{"2", "zh-cn", "Simplified Chinese", "_zh_cn", "*"},
	}, languageRows(langs))
}

func TestModelRows(t *testing.T) {
	rows := modelRows(articlesRegistry(t))
	require.Len(t, rows, 2)

	byName := map[string][]string{}
	for _, r := range rows {
		byName[r[0]] = r
	}
	assert.Equal(t, "articles_category", byName["Category"][1])
	assert.Contains(t, byName["Category"][3], "name_pl")
	assert.Contains(t, byName["Article"][3], "title")
}

func TestScaffold(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts := initOptions{Provider: "sqlite", Languages: knownLanguages[:2]}

	created, err := scaffold(fs, "proj", opts)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join("proj", "schema.yaml"),
		filepath.Join("proj", ".env.example"),
	}, created)

	doc, err := schema.Load(fs, filepath.Join("proj", "schema.yaml"))
	require.NoError(t, err)
	reg, err := doc.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "en", reg.Languages().Default().Code)
	m, err := reg.Model("Category")
	require.NoError(t, err)
	assert.Contains(t, m.TranslatedNames(), "description_pl")

	env, err := afero.ReadFile(fs, filepath.Join("proj", ".env.example"))
	require.NoError(t, err)
	assert.Contains(t, string(env), `DATABASE_URL="file:dev.db"`)

	again, err := scaffold(fs, "proj", opts)
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err = scaffold(fs, "other", initOptions{Provider: "oracle", Languages: knownLanguages[:1]})
	assert.Error(t, err)
}

func TestJoinRows(t *testing.T) {
	rows := joinRows([]sqlgen.Join{{
		Type:        sqlgen.LeftOuter,
		Table:       "t",
		Alias:       "t_en",
		LeftAlias:   "m",
		LeftColumn:  "id",
		RightColumn: "master_id",
		Extra:       []sqlgen.Condition{{Field: "language_id", Operator: "=", Value: 1}},
	}})
	assert.Equal(t, [][]string{{"LEFT OUTER", "t", "t_en", "m.id = t_en.master_id AND language_id = 1"}}, rows)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	old := ui.Out
	ui.Out = &buf
	t.Cleanup(func() { ui.Out = old })

	versionCheck = ""
	versionFull = false
	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Contains(t, buf.String(), "mlquery version")

	versionCheck = "< 0.0.1"
	t.Cleanup(func() { versionCheck = "" })
	assert.Error(t, versionCmd.RunE(versionCmd, nil))
}
