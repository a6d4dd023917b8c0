package merkle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/domdrift/internal/hasher"
	"github.com/dshills/domdrift/internal/workpool"
	"github.com/dshills/domdrift/pkg/types"
)

func hashesFor(t *testing.T, e *hasher.Engine, contents ...string) []types.ChunkHash {
	t.Helper()
	out := make([]types.ChunkHash, len(contents))
	for i, c := range contents {
		out[i] = e.Hash(c)
	}
	return out
}

func newEngine(t *testing.T) *hasher.Engine {
	t.Helper()
	e, err := hasher.NewEngine(types.AlgorithmSHA256, nil, nil)
	require.NoError(t, err)
	return e
}

func TestBuild_Empty(t *testing.T) {
	e := newEngine(t)
	tree := Build(nil, e.Combine, nil)

	assert.True(t, tree.Empty())
	assert.Nil(t, tree.Root())
	assert.True(t, tree.RootHash().IsZero())
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.Height())
	assert.Empty(t, tree.Leaves())
	assert.True(t, tree.Equal(Build(nil, e.Combine, nil)))
}

func TestBuild_SingleLeaf(t *testing.T) {
	e := newEngine(t)
	hashes := hashesFor(t, e, "TAG:<p>")
	tree := Build(hashes, e.Combine, nil)

	require.NotNil(t, tree.Root())
	assert.True(t, tree.Root().IsLeaf())
	assert.Equal(t, hashes[0], tree.RootHash())
	assert.Equal(t, 1, tree.Height())
}

func TestBuild_Shape(t *testing.T) {
	e := newEngine(t)
	h := hashesFor(t, e, "a", "b", "c")
	tree := Build(h, e.Combine, nil)

	// [a b c] -> [ab c] -> [abc]; c is promoted unchanged
	ab := e.Combine(h[0], h[1])
	assert.Equal(t, e.Combine(ab, h[2]), tree.RootHash())
	assert.Equal(t, 3, tree.Height())
	assert.Equal(t, h, tree.Leaves())

	root := tree.Root()
	require.NotNil(t, root.Right)
	assert.True(t, root.Right.IsLeaf())
	assert.Equal(t, h[2], root.Right.Hash)
}

func TestBuild_OrderSensitive(t *testing.T) {
	e := newEngine(t)
	t1 := Build(hashesFor(t, e, "a", "b"), e.Combine, nil)
	t2 := Build(hashesFor(t, e, "b", "a"), e.Combine, nil)

	assert.False(t, t1.Equal(t2))
	assert.Equal(t, t1.Distinct(), t2.Distinct())
}

func TestBuild_ParallelMatchesSequential(t *testing.T) {
	e := newEngine(t)
	contents := make([]string, 1001)
	for i := range contents {
		contents[i] = fmt.Sprintf("TEXT:%d", i)
	}
	hashes := hashesFor(t, e, contents...)

	seq := Build(hashes, e.Combine, nil)
	par := Build(hashes, e.Combine, workpool.New(8))

	assert.Equal(t, seq.RootHash(), par.RootHash())
	assert.Equal(t, seq.Height(), par.Height())
	assert.Equal(t, 1001, par.Len())
}

func TestTree_Distinct(t *testing.T) {
	e := newEngine(t)
	tree := Build(hashesFor(t, e, "x", "y", "x", "x"), e.Combine, nil)

	assert.Equal(t, 4, tree.Len())
	assert.Len(t, tree.Distinct(), 2)
}

func TestTree_EqualEmptyVersusNonEmpty(t *testing.T) {
	e := newEngine(t)
	empty := Build(nil, e.Combine, nil)
	full := Build(hashesFor(t, e, "x"), e.Combine, nil)

	assert.False(t, empty.Equal(full))
	assert.False(t, full.Equal(empty))
}
