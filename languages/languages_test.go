package languages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		Definition{Code: "en", Name: "English"},
		Definition{Code: "pl", Name: "Polish"},
		Definition{Code: "zh-cn", Name: "Simplified Chinese"},
	)
	require.NoError(t, err)
	return r
}

func TestNewRegistry(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{1, 2, 3}, r.IDs())
	assert.Equal(t, "en", r.Default().Code)

	t.Run("rejects empty list", func(t *testing.T) {
		_, err := NewRegistry()
		assert.Error(t, err)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewRegistry(Definition{Code: "en"}, Definition{Code: "EN"})
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		_, err := NewRegistry(Definition{Code: "not a code"})
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	r := testRegistry(t)

	lang, err := r.Resolve(2)
	require.NoError(t, err)
	assert.Equal(t, "pl", lang.Code)

	lang, err = r.Resolve("ZH-CN")
	require.NoError(t, err)
	assert.Equal(t, 3, lang.ID)
	assert.Equal(t, "zh_cn", lang.Suffix())

	lang, err = r.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, lang.ID)

	_, err = r.Resolve(4)
	assert.True(t, errors.Is(err, ErrUnknownLanguage))

	_, err = r.Resolve("xx")
	assert.True(t, errors.Is(err, ErrUnknownLanguage))

	_, err = r.Resolve(2.5)
	assert.True(t, errors.Is(err, ErrUnknownLanguage))
}

func TestSetDefault(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.SetDefault("pl"))
	assert.Equal(t, 2, r.DefaultID())

	require.NoError(t, r.SetDefault(1))
	assert.Equal(t, "en", r.Default().Code)

	err := r.SetDefault("de")
	assert.True(t, errors.Is(err, ErrUnknownLanguage))
	assert.Equal(t, 1, r.DefaultID(), "failed SetDefault must not change the default")
}

func TestFieldAlias(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, "name_en", r.FieldAlias("name", 1))
	assert.Equal(t, "name_zh_cn", r.FieldAlias("name", 3))
	assert.Equal(t, "pl", r.Code(2))
	assert.Equal(t, "", r.Code(9))
}

func TestMatch(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, "pl", r.Match("pl-PL,pl;q=0.9,en;q=0.5").Code)
	assert.Equal(t, "en", r.Match("en-GB").Code)
	assert.Equal(t, "en", r.Match("").Code)
}
