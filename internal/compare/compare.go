package compare

import (
	"fmt"

	"github.com/dshills/domdrift/internal/merkle"
	"github.com/dshills/domdrift/internal/workpool"
	"github.com/dshills/domdrift/pkg/types"
)

// Counts is the outcome of comparing two chunk-hash collections
type Counts struct {
	Common    int // |A ∩ B|
	Different int // |A ∪ B| - |A ∩ B|
}

// Percent returns the difference percentage for the counts
func (c Counts) Percent() float64 {
	return types.DifferencePercent(c.Common, c.Different)
}

// Comparator compares the ordered chunk hashes of two documents
type Comparator interface {
	Method() types.Method
	Compare(a, b []types.ChunkHash) Counts
}

// New returns the comparator for method. combine and pool are only used by
// the tree comparator.
func New(method types.Method, combine merkle.CombineFunc, pool *workpool.Pool) (Comparator, error) {
	switch method {
	case types.MethodLite:
		return FlatSet{}, nil
	case types.MethodTree:
		if combine == nil {
			return nil, fmt.Errorf("%w: tree comparator requires a combine function", types.ErrInvalidConfiguration)
		}
		return NewTree(combine, pool), nil
	default:
		return nil, fmt.Errorf("%w: unknown comparison method %q", types.ErrInvalidConfiguration, string(method))
	}
}

// FlatSet compares hash sets; duplicates within one document count once
type FlatSet struct{}

// Method returns MethodLite
func (FlatSet) Method() types.Method {
	return types.MethodLite
}

// Compare counts common and differing distinct hashes
func (FlatSet) Compare(a, b []types.ChunkHash) Counts {
	return countSets(toSet(a), toSet(b))
}

func toSet(hashes []types.ChunkHash) map[types.ChunkHash]struct{} {
	set := make(map[types.ChunkHash]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}

func countSets(a, b map[types.ChunkHash]struct{}) Counts {
	common := 0
	for h := range a {
		if _, ok := b[h]; ok {
			common++
		}
	}

	return Counts{
		Common:    common,
		Different: len(a) + len(b) - 2*common,
	}
}

// Tree compares documents through per-document hash trees
type Tree struct {
	combine merkle.CombineFunc
	pool    *workpool.Pool
}

// NewTree creates a tree comparator. pool nil builds trees sequentially.
func NewTree(combine merkle.CombineFunc, pool *workpool.Pool) *Tree {
	return &Tree{combine: combine, pool: pool}
}

// Method returns MethodTree
func (t *Tree) Method() types.Method {
	return types.MethodTree
}

// Compare builds both trees and compares them
func (t *Tree) Compare(a, b []types.ChunkHash) Counts {
	return CompareTrees(merkle.Build(a, t.combine, t.pool), merkle.Build(b, t.combine, t.pool))
}

// CompareTrees compares two built trees. Equal roots mean identical leaf
// sequences, so only the distinct leaf count is needed. Mismatched subtrees
// are not walked; unequal roots fall back to the leaf sets.
func CompareTrees(a, b *merkle.Tree) Counts {
	if a.Equal(b) {
		return Counts{Common: len(a.Distinct())}
	}
	return countSets(a.Distinct(), b.Distinct())
}
