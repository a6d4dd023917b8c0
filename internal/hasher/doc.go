// Package hasher computes chunk digests and caches them across comparisons.
//
// # Algorithms
//
// Two digests are available and selected explicitly by the caller:
//
//   - types.AlgorithmXXHash: 64-bit xxHash, the fast default
//   - types.AlgorithmSHA256: SHA-256, collision resistant
//
// Both produce a fixed-width types.ChunkHash tagged with the algorithm, so a
// hash produced by one algorithm never equals a hash produced by the other.
//
// # Basic Usage
//
//	cache, err := hasher.NewCache(100_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h, err := hasher.NewEngine(types.AlgorithmXXHash, cache, workpool.New(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hashes := h.HashChunks(chunks) // hashes[i] belongs to chunks[i]
//
// # Caching
//
// The cache is an explicit object shared by every engine that receives it. It
// is bounded by an entry count; once full, the oldest inserted entry is dropped.
// Lookups never refresh an entry, so eviction follows insertion order. A hash is
// a pure function of (algorithm, content), which makes cache state irrelevant to
// correctness: an evicted entry is simply recomputed to the same value.
package hasher
