package schema_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/multilingual-go/schema"
)

func TestLoadSchemaFile(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewOsFs())

	doc, err := schema.Load(fs, "testdata/articles.yaml")
	require.NoError(t, err)
	assert.Len(t, doc.Languages, 3)
	require.Len(t, doc.Models, 2)
	assert.Equal(t, schema.ForeignKey, doc.Models[1].Fields[0].Kind)

	reg, err := doc.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "pl", reg.Languages().Default().Code)

	article, err := reg.Model("Article")
	require.NoError(t, err)
	assert.Equal(t, "articles_article_translation", article.Translation.Table)
	assert.Equal(t, "", article.Translation.Fallback)
	assert.Equal(t, []string{"-created"}, article.Ordering)

	_, ok := article.Translated("title_zh_cn")
	assert.True(t, ok)
}

func TestParseRejectsUnsupportedVersions(t *testing.T) {
	_, err := schema.Parse([]byte("version: \"2.1\"\nmodels: []\n"))
	assert.ErrorContains(t, err, "not supported")

	_, err = schema.Parse([]byte("models: []\n"))
	assert.ErrorContains(t, err, "missing version")

	_, err = schema.Parse([]byte("version: \"1.0\"\nmodels:\n  - name: A\n    fields:\n      - name: b\n        kind: weird\n"))
	assert.ErrorContains(t, err, "unknown field kind")
}

func TestLoadFromMemoryFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/schema.yaml", []byte(`
version: "1.2"
languages:
  - code: en
models:
  - name: Page
    translation:
      fields:
        - name: title
`), 0o644))

	doc, err := schema.Load(fs, "/schema.yaml")
	require.NoError(t, err)
	reg, err := doc.Build(nil)
	require.NoError(t, err)

	page, err := reg.Model("page")
	require.NoError(t, err)
	assert.Equal(t, "page", page.Table)
	assert.Equal(t, "page_translation", page.Translation.Table)

	_, err = schema.Load(fs, "/missing.yaml")
	assert.Error(t, err)
}
