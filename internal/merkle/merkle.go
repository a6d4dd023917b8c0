package merkle

import (
	"github.com/dshills/domdrift/internal/workpool"
	"github.com/dshills/domdrift/pkg/types"
)

// CombineFunc derives a parent hash from two child hashes
type CombineFunc func(left, right types.ChunkHash) types.ChunkHash

// Node is a tree node. Leaves have no children; promoted nodes keep theirs.
type Node struct {
	Hash  types.ChunkHash
	Left  *Node
	Right *Node
}

// IsLeaf reports whether n has no children
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is an immutable hash tree over an ordered sequence of leaf hashes
type Tree struct {
	root   *Node
	leaves []*Node
	height int
}

// Build constructs a tree over hashes. Leaf creation and each level's pairing
// run on pool; nil pool means sequential.
func Build(hashes []types.ChunkHash, combine CombineFunc, pool *workpool.Pool) *Tree {
	if pool == nil {
		pool = workpool.Sequential()
	}

	t := &Tree{}
	if len(hashes) == 0 {
		return t
	}

	leaves := make([]*Node, len(hashes))
	pool.ForEach(len(hashes), func(i int) {
		leaves[i] = &Node{Hash: hashes[i]}
	})
	t.leaves = leaves

	level := leaves
	height := 1
	for len(level) > 1 {
		next := make([]*Node, (len(level)+1)/2)
		pool.ForEach(len(next), func(i int) {
			left := level[2*i]
			if 2*i+1 == len(level) {
				next[i] = left
				return
			}
			right := level[2*i+1]
			next[i] = &Node{
				Hash:  combine(left.Hash, right.Hash),
				Left:  left,
				Right: right,
			}
		})
		level = next
		height++
	}

	t.root = level[0]
	t.height = height
	return t
}

// Root returns the root node, or nil for an empty tree
func (t *Tree) Root() *Node {
	return t.root
}

// RootHash returns the root digest; the zero hash for an empty tree
func (t *Tree) RootHash() types.ChunkHash {
	if t.root == nil {
		return types.ChunkHash{}
	}
	return t.root.Hash
}

// Empty reports whether the tree has no leaves
func (t *Tree) Empty() bool {
	return t.root == nil
}

// Len returns the number of leaves
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Height returns the number of levels, 0 for an empty tree
func (t *Tree) Height() int {
	return t.height
}

// Leaves returns the leaf hashes in input order
func (t *Tree) Leaves() []types.ChunkHash {
	out := make([]types.ChunkHash, len(t.leaves))
	for i, leaf := range t.leaves {
		out[i] = leaf.Hash
	}
	return out
}

// Distinct returns the set of leaf hashes
func (t *Tree) Distinct() map[types.ChunkHash]struct{} {
	set := make(map[types.ChunkHash]struct{}, len(t.leaves))
	for _, leaf := range t.leaves {
		set[leaf.Hash] = struct{}{}
	}
	return set
}

// Equal reports whether both trees have the same root hash. Two empty trees
// are equal.
func (t *Tree) Equal(other *Tree) bool {
	if t.Empty() || other.Empty() {
		return t.Empty() && other.Empty()
	}
	return t.RootHash() == other.RootHash()
}
