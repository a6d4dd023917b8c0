package engine

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dshills/domdrift/internal/chunker"
	"github.com/dshills/domdrift/internal/compare"
	"github.com/dshills/domdrift/internal/hasher"
	"github.com/dshills/domdrift/internal/linediff"
	"github.com/dshills/domdrift/internal/tokenizer"
	"github.com/dshills/domdrift/internal/workpool"
	"github.com/dshills/domdrift/pkg/types"
)

// DefaultChunkSize is the number of tokens per chunk when none is configured
const DefaultChunkSize = 1

// Engine coordinates the comparison pipeline: tokenize -> chunk -> hash -> compare
type Engine struct {
	tokenizer *tokenizer.Tokenizer
	cache     *hasher.Cache
	pool      *workpool.Pool

	defaults Options
	policy   linediff.Policy

	comparisons atomic.Uint64
}

// Config contains configuration for the engine
type Config struct {
	ChunkSize      int             // Tokens per chunk (default: 1)
	Algorithm      types.Algorithm // Hash algorithm (default: xxhash)
	Method         types.Method    // Comparison method (default: lite)
	UseParallel    bool            // Hash chunks on the worker pool (default: true)
	UseCache       bool            // Route hashing through the shared cache (default: true)
	CacheSizeLimit int             // Maximum cache entries (default: 100000)
	Workers        int             // Worker pool size (default: runtime.NumCPU())

	LineDiff linediff.Policy
}

// Options selects how a single comparison runs
type Options struct {
	ChunkSize int
	Algorithm types.Algorithm
	Method    types.Method
	UseCache  bool
}

// Comparison is the result of one comparison together with the context the
// line-diff aligner needs
type Comparison struct {
	Result  types.ComparisonResult
	Options Options

	A linediff.Side
	B linediff.Side
}

// Statistics contains counters about the engine's work so far
type Statistics struct {
	Comparisons uint64
	Workers     int
	Cache       hasher.CacheStats
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:      DefaultChunkSize,
		Algorithm:      types.AlgorithmXXHash,
		Method:         types.MethodLite,
		UseParallel:    true,
		UseCache:       true,
		CacheSizeLimit: hasher.DefaultCacheSize,
		Workers:        runtime.NumCPU(),
		LineDiff:       linediff.DefaultPolicy(),
	}
}

// Validate checks the configuration before any work starts
func (c *Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return err
	}

	if c.CacheSizeLimit <= 0 {
		return fmt.Errorf("%w: cache size limit must be positive, got %d", types.ErrInvalidConfiguration, c.CacheSizeLimit)
	}

	return c.LineDiff.Validate()
}

// Options returns the per-request defaults of the configuration
func (c *Config) Options() Options {
	return Options{
		ChunkSize: c.ChunkSize,
		Algorithm: c.Algorithm,
		Method:    c.Method,
		UseCache:  c.UseCache,
	}
}

// Validate rejects a request as a whole; nothing is hashed for invalid options
func (o Options) Validate() error {
	if o.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be at least 1, got %d", types.ErrInvalidConfiguration, o.ChunkSize)
	}

	if err := o.Algorithm.Validate(); err != nil {
		return err
	}

	if _, err := types.ParseMethod(string(o.Method)); err != nil {
		return err
	}

	return nil
}

// New creates an engine with its own hash cache
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache, err := hasher.NewCache(cfg.CacheSizeLimit)
	if err != nil {
		return nil, err
	}

	return NewWithCache(cfg, cache)
}

// NewWithCache creates an engine that shares an existing hash cache
func NewWithCache(cfg *Config, cache *hasher.Cache) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cache == nil {
		return nil, fmt.Errorf("%w: cache is required", types.ErrInvalidConfiguration)
	}

	pool := workpool.Sequential()
	if cfg.UseParallel {
		pool = workpool.New(cfg.Workers)
	}

	return &Engine{
		tokenizer: tokenizer.New(),
		cache:     cache,
		pool:      pool,
		defaults:  cfg.Options(),
		policy:    cfg.LineDiff,
	}, nil
}

// Options returns the engine's default request options
func (e *Engine) Options() Options {
	return e.defaults
}

// Tokenize normalizes an HTML document into tokens
func (e *Engine) Tokenize(doc string) []types.Token {
	return e.tokenizer.Tokenize(doc)
}

// CompareHTML tokenizes both documents and compares them
func (e *Engine) CompareHTML(docA, docB string, opts Options) (*Comparison, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	c, err := e.compare(e.Tokenize(docA), e.Tokenize(docB), opts)
	if err != nil {
		return nil, err
	}
	c.Result.ProcessingTime = time.Since(start)

	return c, nil
}

// Compare compares two token streams. The result depends only on the tokens
// and options; cache state affects nothing but ProcessingTime.
func (e *Engine) Compare(tokensA, tokensB []types.Token, opts Options) (*Comparison, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	c, err := e.compare(tokensA, tokensB, opts)
	if err != nil {
		return nil, err
	}
	c.Result.ProcessingTime = time.Since(start)

	return c, nil
}

// compare runs chunk -> hash -> compare on validated options
func (e *Engine) compare(tokensA, tokensB []types.Token, opts Options) (*Comparison, error) {
	method, err := types.ParseMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	opts.Method = method

	ch, err := chunker.New(opts.ChunkSize)
	if err != nil {
		return nil, err
	}

	var cache *hasher.Cache
	if opts.UseCache {
		cache = e.cache
	}

	h, err := hasher.NewEngine(opts.Algorithm, cache, e.pool)
	if err != nil {
		return nil, err
	}

	cmp, err := compare.New(method, h.Combine, e.pool)
	if err != nil {
		return nil, err
	}

	chunksA := ch.Chunk(tokensA)
	chunksB := ch.Chunk(tokensB)

	hashesA := h.HashChunks(chunksA)
	hashesB := h.HashChunks(chunksB)

	counts := cmp.Compare(hashesA, hashesB)

	e.comparisons.Add(1)

	return &Comparison{
		Result: types.ComparisonResult{
			TotalChunksA:      len(chunksA),
			TotalChunksB:      len(chunksB),
			CommonChunks:      counts.Common,
			DifferentChunks:   counts.Different,
			DifferencePercent: counts.Percent(),
			Method:            method,
			Algorithm:         opts.Algorithm,
			ChunkSize:         opts.ChunkSize,
		},
		Options: opts,
		A:       linediff.Side{Chunks: chunksA, Hashes: hashesA},
		B:       linediff.Side{Chunks: chunksB, Hashes: hashesB},
	}, nil
}

// LineDiff derives line-level changes from a finished comparison
func (e *Engine) LineDiff(c *Comparison) ([]types.LineDiffEntry, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil comparison", types.ErrInternalInconsistency)
	}

	entries, err := linediff.Align(linediff.Input{A: c.A, B: c.B}, e.policy)
	if err != nil {
		return nil, fmt.Errorf("failed to align line diff: %w", err)
	}

	return entries, nil
}

// CacheStats returns a snapshot of the shared cache counters
func (e *Engine) CacheStats() hasher.CacheStats {
	return e.cache.Stats()
}

// Stats returns the engine's counters
func (e *Engine) Stats() Statistics {
	return Statistics{
		Comparisons: e.comparisons.Load(),
		Workers:     e.pool.Workers(),
		Cache:       e.cache.Stats(),
	}
}
