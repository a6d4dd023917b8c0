package hasher

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/domdrift/internal/workpool"
	"github.com/dshills/domdrift/pkg/types"
)

// Sum computes the digest of content with the given algorithm
func Sum(content string, algorithm types.Algorithm) (types.ChunkHash, error) {
	if err := algorithm.Validate(); err != nil {
		return types.ChunkHash{}, err
	}
	return sum([]byte(content), algorithm), nil
}

// sum dispatches on the two known algorithms; the caller validated algorithm
func sum(data []byte, algorithm types.Algorithm) types.ChunkHash {
	h := types.ChunkHash{Algorithm: algorithm}

	switch algorithm {
	case types.AlgorithmXXHash:
		binary.BigEndian.PutUint64(h.Digest[:8], xxhash.Sum64(data))
	case types.AlgorithmSHA256:
		h.Digest = sha256.Sum256(data)
	}

	return h
}

// Engine hashes chunk contents with one algorithm, optionally through a shared cache
type Engine struct {
	algorithm types.Algorithm
	cache     *Cache // nil disables caching
	pool      *workpool.Pool
}

// NewEngine creates a hash engine. cache may be nil; pool nil means sequential.
func NewEngine(algorithm types.Algorithm, cache *Cache, pool *workpool.Pool) (*Engine, error) {
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}

	if pool == nil {
		pool = workpool.Sequential()
	}

	return &Engine{
		algorithm: algorithm,
		cache:     cache,
		pool:      pool,
	}, nil
}

// Algorithm returns the engine's digest algorithm
func (e *Engine) Algorithm() types.Algorithm {
	return e.algorithm
}

// Cached reports whether lookups go through a cache
func (e *Engine) Cached() bool {
	return e.cache != nil
}

// Hash returns the digest of one chunk content
func (e *Engine) Hash(content string) types.ChunkHash {
	if e.cache == nil {
		return sum([]byte(content), e.algorithm)
	}

	if h, ok := e.cache.Get(e.algorithm, content); ok {
		return h
	}

	return e.cache.Add(e.algorithm, content, sum([]byte(content), e.algorithm))
}

// Combine hashes the concatenation of two digests; used for hash-tree parents
func (e *Engine) Combine(left, right types.ChunkHash) types.ChunkHash {
	l, r := left.Bytes(), right.Bytes()

	buf := make([]byte, 0, len(l)+len(r))
	buf = append(buf, l...)
	buf = append(buf, r...)

	return sum(buf, e.algorithm)
}

// HashChunks hashes every chunk in parallel; hashes[i] belongs to chunks[i]
func (e *Engine) HashChunks(chunks []types.Chunk) []types.ChunkHash {
	hashes := make([]types.ChunkHash, len(chunks))

	e.pool.ForEach(len(chunks), func(i int) {
		hashes[i] = e.Hash(chunks[i].Content)
	})

	return hashes
}
