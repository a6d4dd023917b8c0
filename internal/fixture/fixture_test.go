package fixture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/domdrift/internal/engine"
	"github.com/dshills/domdrift/pkg/types"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Shop</title></head>
<body>
  <div class="header" id="top">
    <h1>Summer Collection</h1>
    <img src="/logo.png" alt="logo">
  </div>
  <ul class="items">
    <li>Linen shirt</li>
    <li>Canvas shoes</li>
  </ul>
  <p>Free shipping on orders over $50.</p>
</body>
</html>`

func baseline(t *testing.T) string {
	t.Helper()
	out, muts, err := Mutate(page, Options{Seed: 1})
	require.NoError(t, err)
	require.Empty(t, muts)
	return out
}

func TestMutate_ZeroMutationsOnlyNormalizes(t *testing.T) {
	out := baseline(t)
	assert.Contains(t, out, "<li>Canvas shoes</li>")
	assert.Contains(t, out, `<div class="header" id="top">`)
}

func TestMutate_Deterministic(t *testing.T) {
	opts := Options{Seed: 42, Mutations: 6}

	out1, muts1, err := Mutate(page, opts)
	require.NoError(t, err)
	out2, muts2, err := Mutate(page, opts)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, muts1, muts2)
	assert.Len(t, muts1, 6)
	assert.NotEqual(t, baseline(t), out1)
}

func TestMutate_Kinds(t *testing.T) {
	base := baseline(t)

	t.Run("insert element", func(t *testing.T) {
		out, muts, err := Mutate(page, Options{Seed: 7, Mutations: 1, Kinds: []MutationKind{InsertElement}})
		require.NoError(t, err)
		require.Len(t, muts, 1)
		assert.Equal(t, InsertElement, muts[0].Kind)
		assert.Contains(t, out, `<p data-fixture="1">fixture 1</p>`)
		assert.True(t, strings.HasPrefix(muts[0].Path, "html>body"), muts[0].Path)
	})

	t.Run("remove element", func(t *testing.T) {
		out, muts, err := Mutate(page, Options{Seed: 7, Mutations: 1, Kinds: []MutationKind{RemoveElement}})
		require.NoError(t, err)
		require.Len(t, muts, 1)
		assert.Equal(t, RemoveElement, muts[0].Kind)
		assert.Less(t, strings.Count(out, "<"), strings.Count(base, "<"))
	})

	t.Run("edit text", func(t *testing.T) {
		out, muts, err := Mutate(page, Options{Seed: 7, Mutations: 1, Kinds: []MutationKind{EditText}})
		require.NoError(t, err)
		require.Len(t, muts, 1)
		assert.Contains(t, out, "edit1")
		assert.Contains(t, out, "<title>Shop</title>")
	})

	t.Run("change attribute", func(t *testing.T) {
		out, muts, err := Mutate(page, Options{Seed: 7, Mutations: 1, Kinds: []MutationKind{ChangeAttribute}})
		require.NoError(t, err)
		require.Len(t, muts, 1)
		assert.Contains(t, out, `-1"`)
		assert.Contains(t, muts[0].String(), "change_attribute")
	})
}

func TestMutate_NoCandidates(t *testing.T) {
	_, _, err := Mutate("", Options{Seed: 1, Mutations: 1, Kinds: []MutationKind{RemoveElement}})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestMutate_FallsBackToAvailableKind(t *testing.T) {
	out, muts, err := Mutate("", Options{Seed: 3, Mutations: 1, Kinds: []MutationKind{RemoveElement, InsertElement}})
	require.NoError(t, err)
	require.NotEmpty(t, muts)
	assert.Equal(t, InsertElement, muts[0].Kind)
	assert.Contains(t, out, "data-fixture")
}

func TestMutate_InvalidOptions(t *testing.T) {
	_, _, err := Mutate(page, Options{Mutations: -1})
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)

	_, _, err = Mutate(page, Options{Mutations: 1, Kinds: []MutationKind{"shuffle"}})
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    MutationKind
		wantErr bool
	}{
		{"insert_element", InsertElement, false},
		{" Remove_Element ", RemoveElement, false},
		{"edit_text", EditText, false},
		{"change_attribute", ChangeAttribute, false},
		{"rename", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMutate_ComparesAsDrift(t *testing.T) {
	mutated, _, err := Mutate(page, Options{Seed: 99, Mutations: 3})
	require.NoError(t, err)

	e, err := engine.New(nil)
	require.NoError(t, err)

	c, err := e.CompareHTML(baseline(t), mutated, e.Options())
	require.NoError(t, err)
	assert.Greater(t, c.Result.DifferencePercent, 0.0)

	same, err := e.CompareHTML(baseline(t), baseline(t), e.Options())
	require.NoError(t, err)
	assert.Zero(t, same.Result.DifferencePercent)
}
