// Package merkle builds binary hash trees over ordered chunk hashes.
//
// Leaves keep the input order. Each level pairs adjacent nodes left to right
// and hashes their concatenated digests; an odd trailing node is promoted to
// the next level unchanged. A tree over zero hashes has no root.
//
// Example:
//
//	e, _ := hasher.NewEngine(types.AlgorithmXXHash, nil, nil)
//	tree := merkle.Build(hashes, e.Combine, workpool.New(0))
//	if tree.RootHash() == other.RootHash() {
//	    // identical leaf sequences
//	}
package merkle
