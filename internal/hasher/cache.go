package hasher

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/domdrift/pkg/types"
)

// DefaultCacheSize is used when no explicit limit is configured
const DefaultCacheSize = 100_000

// cacheKey separates entries of different algorithms for the same content
type cacheKey struct {
	algorithm types.Algorithm
	content   string
}

// Cache is a bounded, concurrency-safe mapping from chunk content to ChunkHash
type Cache struct {
	entries *lru.Cache[cacheKey, types.ChunkHash]
	limit   int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// CacheStats is a point-in-time snapshot of cache counters
type CacheStats struct {
	Entries   int
	Limit     int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewCache creates a cache holding at most limit entries
func NewCache(limit int) (*Cache, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: cache size limit must be positive, got %d", types.ErrInvalidConfiguration, limit)
	}

	c := &Cache{limit: limit}
	entries, err := lru.NewWithEvict(limit, func(cacheKey, types.ChunkHash) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hash cache: %w", err)
	}
	c.entries = entries

	return c, nil
}

// Get looks up a cached hash without changing its eviction position
func (c *Cache) Get(algorithm types.Algorithm, content string) (types.ChunkHash, bool) {
	h, ok := c.entries.Peek(cacheKey{algorithm: algorithm, content: content})
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return h, ok
}

// Add inserts a hash unless the key is already present and returns the stored
// value. Concurrent inserts of one key keep the first value.
func (c *Cache) Add(algorithm types.Algorithm, content string, h types.ChunkHash) types.ChunkHash {
	previous, found, _ := c.entries.PeekOrAdd(cacheKey{algorithm: algorithm, content: content}, h)
	if found {
		return previous
	}
	return h
}

// Len returns the current number of entries
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Limit returns the configured entry limit
func (c *Cache) Limit() int {
	return c.limit
}

// Purge empties the cache. Dropped entries count as evictions.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:   c.entries.Len(),
		Limit:     c.limit,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
