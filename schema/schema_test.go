package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/multilingual-go/internal/fixtures"
	"github.com/satishbabariya/multilingual-go/schema"
)

func TestRegisterDefaults(t *testing.T) {
	reg := fixtures.Articles()

	category, err := reg.Model("category")
	require.NoError(t, err)

	assert.Equal(t, "id", category.PK().Name)
	creator, ok := category.Field("creator")
	require.True(t, ok)
	assert.Equal(t, "creator_id", creator.Column)
	assert.Equal(t, "User", creator.Target().Name)

	parent, ok := category.Field("parent")
	require.True(t, ok)
	assert.Same(t, category, parent.Target())

	tr := category.Translation
	require.NotNil(t, tr)
	assert.Equal(t, "master_id", tr.MasterColumn)
	assert.Equal(t, "language_id", tr.LanguageColumn)
	assert.Same(t, category, tr.Owner())

	custom, err := reg.Model("ModelWithCustomPK")
	require.NoError(t, err)
	assert.Equal(t, "custompk", custom.PK().Name)

	_, err = reg.Model("Nope")
	assert.ErrorContains(t, err, "model Nope not found")
}

func TestTranslatedNames(t *testing.T) {
	reg := fixtures.Articles()
	category, err := reg.Model("Category")
	require.NoError(t, err)

	ref, ok := reg.ClassifyAttribute(category, "name")
	require.True(t, ok)
	assert.False(t, ref.Explicit())
	assert.Equal(t, "name", ref.Field.Name)

	ref, ok = reg.ClassifyAttribute(category, "name_zh_cn")
	require.True(t, ok)
	assert.Equal(t, 3, ref.LanguageID)

	_, ok = reg.ClassifyAttribute(category, "created")
	assert.False(t, ok)

	assert.Contains(t, category.TranslatedNames(), "description_pl")
}

func TestInheritance(t *testing.T) {
	reg := fixtures.Articles()
	special, err := reg.Model("SpecialCategory")
	require.NoError(t, err)
	category, err := reg.Model("Category")
	require.NoError(t, err)

	pk := special.PK()
	assert.Equal(t, "category_ptr", pk.Name)
	assert.Equal(t, "category_ptr_id", pk.Column)
	assert.True(t, pk.ParentLink)
	assert.Same(t, pk, special.ParentLink(category))
	assert.Equal(t, []*schema.Model{category}, special.BaseChain(category))

	info, err := special.FieldByName("created")
	require.NoError(t, err)
	assert.Same(t, category, info.Model)
	assert.True(t, info.Direct)

	ref, ok := reg.ClassifyAttribute(special, "name_pl")
	require.True(t, ok)
	assert.Same(t, category, ref.Owner)

	_, ok = special.Accessor("description")
	assert.True(t, ok)
}

func TestFieldByName(t *testing.T) {
	reg := fixtures.Articles()
	article, err := reg.Model("Article")
	require.NoError(t, err)
	category, err := reg.Model("Category")
	require.NoError(t, err)

	info, err := article.FieldByName("tags")
	require.NoError(t, err)
	assert.True(t, info.Direct)
	assert.True(t, info.M2M)

	info, err = category.FieldByName("articles")
	require.NoError(t, err)
	assert.False(t, info.Direct)
	assert.False(t, info.M2M)
	assert.Equal(t, "Article", info.Relation.Model.Name)

	_, err = category.FieldByName("bogus")
	assert.True(t, errors.Is(err, schema.ErrNoSuchField))

	assert.Equal(t,
		[]string{"articles", "children", "created", "creator", "id", "parent", "specialcategory"},
		category.AllFieldNames())
}

func TestRegisterErrors(t *testing.T) {
	langs := fixtures.Languages()

	t.Run("unknown relation target", func(t *testing.T) {
		reg := schema.NewRegistry(langs)
		err := reg.Register(&schema.Model{
			Name:   "Post",
			Fields: []*schema.Field{{Name: "author", Kind: schema.ForeignKey, To: "Author"}},
		})
		assert.ErrorContains(t, err, "model Author not found")
		assert.Empty(t, reg.Models())
	})

	t.Run("duplicate model", func(t *testing.T) {
		reg := schema.NewRegistry(langs)
		require.NoError(t, reg.Register(&schema.Model{Name: "Post"}))
		assert.ErrorContains(t, reg.Register(&schema.Model{Name: "post"}), "already registered")
	})

	t.Run("translated name clash", func(t *testing.T) {
		reg := schema.NewRegistry(langs)
		err := reg.Register(&schema.Model{
			Name:   "Page",
			Fields: []*schema.Field{{Name: "title_en", Type: "string"}},
			Translation: &schema.Translation{
				Fields: []*schema.Field{{Name: "title", Type: "string"}},
			},
		})
		assert.ErrorContains(t, err, "clashes")
	})
}

type memoryStore struct {
	values map[string]map[any]any
}

func (m *memoryStore) Translation(field string, lang any) (any, error) {
	return m.values[field][lang], nil
}

func (m *memoryStore) SetTranslation(field string, value any, lang any) error {
	if m.values[field] == nil {
		m.values[field] = map[any]any{}
	}
	m.values[field][lang] = value
	return nil
}

func TestAccessorTable(t *testing.T) {
	reg := fixtures.Articles()
	category, err := reg.Model("Category")
	require.NoError(t, err)

	store := &memoryStore{values: map[string]map[any]any{}}

	acc, ok := category.Accessor("name_pl")
	require.True(t, ok)
	require.NoError(t, acc.Set(store, "kategoria"))
	assert.Equal(t, "kategoria", store.values["name"][2])

	acc, ok = category.Accessor("name")
	require.True(t, ok)
	require.NoError(t, acc.Set(store, "category"))
	v, err := acc.Get(store)
	require.NoError(t, err)
	assert.Equal(t, "category", v)
	assert.Equal(t, "category", store.values["name"][nil])
}
