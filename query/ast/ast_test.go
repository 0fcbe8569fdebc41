package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	c := Lookup("category__name_pl__contains", "kat")
	assert.Equal(t, []string{"category", "name_pl"}, c.Path)
	assert.Equal(t, OpContains, c.Operator)

	c = Lookup("name", "x")
	assert.Equal(t, []string{"name"}, c.Path)
	assert.Equal(t, OpEquals, c.Operator)

	c = Lookup("parent__isnull", true)
	assert.Equal(t, OpIsNull, c.Operator)
}

func TestNot(t *testing.T) {
	g := Not(Eq("name", "a"))
	assert.True(t, g.Negated)
	require.Len(t, g.Children, 1)

	or := Or(Eq("a", 1), Eq("b", 2))
	negated := Not(or)
	assert.True(t, negated.Negated)
	assert.False(t, or.Negated, "Not must not mutate its argument")
	assert.Equal(t, OpOR, negated.Operator)
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderByClause{Field: "name", Direction: SortDesc}, ParseOrder("-name"))
	assert.Equal(t, OrderByClause{Field: "category.name_en", Direction: SortAsc}, ParseOrder("category.name_en"))
	assert.Equal(t, "-title", ParseOrder("-title").String())
}

func TestParseFilter(t *testing.T) {
	t.Run("single comparison", func(t *testing.T) {
		n, err := ParseFilter(`name_pl contains "kat"`)
		require.NoError(t, err)
		assert.Equal(t, &Condition{Path: []string{"name_pl"}, Operator: OpContains, Value: "kat"}, n)
	})

	t.Run("or of paths", func(t *testing.T) {
		n, err := ParseFilter(`category.name = "cat 1" or category.name_pl contains "2"`)
		require.NoError(t, err)
		g, ok := n.(*Group)
		require.True(t, ok)
		assert.Equal(t, OpOR, g.Operator)
		require.Len(t, g.Children, 2)
		assert.Equal(t, []string{"category", "name_pl"}, g.Children[1].(*Condition).Path)
	})

	t.Run("double underscore paths", func(t *testing.T) {
		n, err := ParseFilter(`category__name_en = "x" or category.parent__name contains "y"`)
		require.NoError(t, err)
		g := n.(*Group)
		assert.Equal(t, []string{"category", "name_en"}, g.Children[0].(*Condition).Path)
		assert.Equal(t, []string{"category", "parent", "name"}, g.Children[1].(*Condition).Path)
	})

	t.Run("precedence and negation", func(t *testing.T) {
		n, err := ParseFilter(`id >= 2 and not (parent isnull true or id in [1, 2])`)
		require.NoError(t, err)
		g := n.(*Group)
		assert.Equal(t, OpAND, g.Operator)
		assert.Equal(t, int64(2), g.Children[0].(*Condition).Value)

		neg := g.Children[1].(*Group)
		assert.True(t, neg.Negated)
		assert.Equal(t, OpOR, neg.Operator)
		assert.Equal(t, true, neg.Children[0].(*Condition).Value)
		assert.Equal(t, []interface{}{int64(1), int64(2)}, neg.Children[1].(*Condition).Value)
	})

	t.Run("null and floats", func(t *testing.T) {
		n, err := ParseFilter(`created = null and score < 1.5`)
		require.NoError(t, err)
		g := n.(*Group)
		assert.Nil(t, g.Children[0].(*Condition).Value)
		assert.Equal(t, 1.5, g.Children[1].(*Condition).Value)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := ParseFilter(`name frobnicates "x"`)
		assert.ErrorContains(t, err, "unknown operator")

		_, err = ParseFilter(`name = `)
		assert.Error(t, err)
	})
}
