package compare

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/domdrift/internal/hasher"
	"github.com/dshills/domdrift/internal/merkle"
	"github.com/dshills/domdrift/internal/workpool"
	"github.com/dshills/domdrift/pkg/types"
)

func newEngine(t testing.TB) *hasher.Engine {
	t.Helper()
	e, err := hasher.NewEngine(types.AlgorithmXXHash, nil, nil)
	require.NoError(t, err)
	return e
}

func hashAll(e *hasher.Engine, contents ...string) []types.ChunkHash {
	out := make([]types.ChunkHash, len(contents))
	for i, c := range contents {
		out[i] = e.Hash(c)
	}
	return out
}

func comparators(t *testing.T, e *hasher.Engine) []Comparator {
	t.Helper()
	lite, err := New(types.MethodLite, nil, nil)
	require.NoError(t, err)
	tree, err := New(types.MethodTree, e.Combine, workpool.New(4))
	require.NoError(t, err)
	return []Comparator{lite, tree}
}

func TestNew(t *testing.T) {
	e := newEngine(t)

	c, err := New(types.MethodLite, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, types.MethodLite, c.Method())

	c, err = New(types.MethodTree, e.Combine, nil)
	require.NoError(t, err)
	assert.Equal(t, types.MethodTree, c.Method())

	_, err = New(types.MethodTree, nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)

	_, err = New("fuzzy", nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
}

func TestCompare_Cases(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name      string
		a, b      []string
		common    int
		different int
		percent   float64
	}{
		{
			name:   "identical",
			a:      []string{"TAG:<div>", "TEXT:x", "TAG:</div>"},
			b:      []string{"TAG:<div>", "TEXT:x", "TAG:</div>"},
			common: 3,
		},
		{
			name:      "script inserted",
			a:         []string{"TAG:<div>", "TAG:<h1>", "TEXT:Title", "TAG:</h1>"},
			b:         []string{"TAG:<div>", "TAG:<h1>", "TEXT:Title", "TAG:<script>", "TEXT:var x=1;", "TAG:</script>", "TAG:</h1>"},
			common:    4,
			different: 3,
			percent:   300.0 / 7.0,
		},
		{
			name:      "disjoint",
			a:         []string{"a", "b"},
			b:         []string{"c"},
			different: 3,
			percent:   100,
		},
		{
			name: "both empty",
		},
		{
			name:      "one empty",
			a:         []string{"a", "b"},
			different: 2,
			percent:   100,
		},
		{
			name:   "duplicates count once",
			a:      []string{"x", "x", "x", "y"},
			b:      []string{"x", "y"},
			common: 2,
		},
		{
			name:   "reordered",
			a:      []string{"a", "b", "c"},
			b:      []string{"c", "b", "a"},
			common: 3,
		},
	}

	for _, tt := range tests {
		for _, c := range comparators(t, e) {
			t.Run(fmt.Sprintf("%s/%s", tt.name, c.Method()), func(t *testing.T) {
				got := c.Compare(hashAll(e, tt.a...), hashAll(e, tt.b...))
				assert.Equal(t, tt.common, got.Common)
				assert.Equal(t, tt.different, got.Different)
				assert.InDelta(t, tt.percent, got.Percent(), 1e-9)
			})
		}
	}
}

func TestCompare_MethodsAgreeOnRandomInput(t *testing.T) {
	e := newEngine(t)
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 50; round++ {
		a := make([]string, rng.IntN(40))
		for i := range a {
			a[i] = fmt.Sprintf("TEXT:%d", rng.IntN(30))
		}
		b := make([]string, rng.IntN(40))
		for i := range b {
			b[i] = fmt.Sprintf("TEXT:%d", rng.IntN(30))
		}

		ha, hb := hashAll(e, a...), hashAll(e, b...)
		lite := FlatSet{}.Compare(ha, hb)
		tree := NewTree(e.Combine, workpool.New(3)).Compare(ha, hb)

		assert.Equal(t, lite, tree, "round %d", round)
	}
}

func TestCompareTrees_RootShortCircuit(t *testing.T) {
	e := newEngine(t)
	hashes := hashAll(e, "a", "b", "a", "c")

	ta := merkle.Build(hashes, e.Combine, nil)
	tb := merkle.Build(hashes, e.Combine, nil)
	require.Equal(t, ta.RootHash(), tb.RootHash())

	got := CompareTrees(ta, tb)
	assert.Equal(t, Counts{Common: 3}, got)
}

func BenchmarkCompare(b *testing.B) {
	e := newEngine(b)
	contents := make([]string, 5000)
	for i := range contents {
		contents[i] = fmt.Sprintf("TEXT:%d", i)
	}
	ha := hashAll(e, contents...)
	contents[2500] = "TEXT:changed"
	hb := hashAll(e, contents...)

	b.Run("lite", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = FlatSet{}.Compare(ha, hb)
		}
	})
	b.Run("tree", func(b *testing.B) {
		tree := NewTree(e.Combine, workpool.New(0))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = tree.Compare(ha, hb)
		}
	})
}
