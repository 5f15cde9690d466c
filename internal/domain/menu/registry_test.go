package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderbell/internal/core/apperror"
)

func TestRegistry_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("new name is inserted", func(t *testing.T) {
		r := NewRegistry()
		item, err := r.Add(ctx, "soup", "")
		require.NoError(t, err)
		assert.Equal(t, "soup", item.Name)
		assert.Equal(t, "", item.ImageURL)
		assert.Equal(t, []Item{{Name: "soup"}}, r.List())
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Add(ctx, "soup", "")
		require.NoError(t, err)

		_, err = r.Add(ctx, "soup", "http://img/soup.png")
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
		assert.Len(t, r.List(), 1)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Add(ctx, "soup", "")
		require.NoError(t, err)
		_, err = r.Add(ctx, "Soup", "")
		require.NoError(t, err)
		assert.Len(t, r.List(), 2)
	})
}

func TestRegistry_Remove(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	for _, name := range []string{"soup", "salad", "pie"} {
		_, err := r.Add(ctx, name, "img/"+name)
		require.NoError(t, err)
	}

	removed, err := r.Remove(ctx, "salad")
	require.NoError(t, err)
	assert.Equal(t, Item{Name: "salad", ImageURL: "img/salad"}, *removed)
	assert.Equal(t, []Item{{"soup", "img/soup"}, {"pie", "img/pie"}}, r.List())

	_, err = r.Remove(ctx, "salad")
	assert.True(t, apperror.IsNotFound(err))

	// index stays consistent after the shift
	_, err = r.Remove(ctx, "pie")
	require.NoError(t, err)
	assert.Equal(t, []Item{{"soup", "img/soup"}}, r.List())

	_, err = r.Add(ctx, "salad", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"soup", "salad"}, names(r.List()))
}

func TestRegistry_ListIsACopy(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add(context.Background(), "soup", "")
	require.NoError(t, err)

	items := r.List()
	items[0].Name = "changed"
	assert.Equal(t, "soup", r.List()[0].Name)
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
