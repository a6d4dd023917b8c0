package bench

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/domdrift/internal/engine"
	"github.com/dshills/domdrift/pkg/types"
)

// DefaultIterations is the number of timed runs per case
const DefaultIterations = 5

// Config describes the benchmark grid
type Config struct {
	ChunkSizes  []int
	Algorithms  []types.Algorithm
	Methods     []types.Method
	Iterations  int
	UseCache    bool
	Concurrency int // Cases run at once (default: 1)
}

// Case is one point of the grid
type Case struct {
	ChunkSize int
	Algorithm types.Algorithm
	Method    types.Method
}

// Result holds timings for one case
type Result struct {
	Case

	Iterations        int
	First             time.Duration // First run, cold when the cache is empty
	Mean              time.Duration
	Min               time.Duration
	Max               time.Duration
	DifferencePercent float64
}

// Headers names the columns returned by Result.Row
var Headers = []string{"method", "algorithm", "chunk size", "first", "mean", "min", "max", "diff %"}

// DefaultConfig returns a grid over chunk sizes 1, 4 and 16 with both
// algorithms and both methods
func DefaultConfig() Config {
	return Config{
		ChunkSizes:  []int{1, 4, 16},
		Algorithms:  []types.Algorithm{types.AlgorithmXXHash, types.AlgorithmSHA256},
		Methods:     []types.Method{types.MethodLite, types.MethodTree},
		Iterations:  DefaultIterations,
		UseCache:    true,
		Concurrency: 1,
	}
}

// Validate checks the grid before anything runs
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", types.ErrInvalidConfiguration, c.Iterations)
	}
	if len(c.ChunkSizes) == 0 || len(c.Algorithms) == 0 || len(c.Methods) == 0 {
		return fmt.Errorf("%w: benchmark grid is empty", types.ErrInvalidConfiguration)
	}
	for _, bc := range c.Cases() {
		opts := engine.Options{ChunkSize: bc.ChunkSize, Algorithm: bc.Algorithm, Method: bc.Method}
		if err := opts.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Cases expands the grid in method, algorithm, chunk size order
func (c Config) Cases() []Case {
	cases := make([]Case, 0, len(c.Methods)*len(c.Algorithms)*len(c.ChunkSizes))
	for _, m := range c.Methods {
		for _, a := range c.Algorithms {
			for _, size := range c.ChunkSizes {
				cases = append(cases, Case{ChunkSize: size, Algorithm: a, Method: m})
			}
		}
	}
	return cases
}

// Run times every case of the grid comparing docA against docB. Results are
// returned in Cases order.
func Run(ctx context.Context, eng *engine.Engine, docA, docB string, cfg Config) ([]Result, error) {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokensA := eng.Tokenize(docA)
	tokensB := eng.Tokenize(docB)

	cases := cfg.Cases()
	results := make([]Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, c := range cases {
		g.Go(func() error {
			r, err := runCase(ctx, eng, tokensA, tokensB, c, cfg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkAgreement(results); err != nil {
		return nil, err
	}

	return results, nil
}

func runCase(ctx context.Context, eng *engine.Engine, tokensA, tokensB []types.Token, c Case, cfg Config) (Result, error) {
	opts := engine.Options{
		ChunkSize: c.ChunkSize,
		Algorithm: c.Algorithm,
		Method:    c.Method,
		UseCache:  cfg.UseCache,
	}

	r := Result{Case: c, Iterations: cfg.Iterations}
	var total time.Duration

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		start := time.Now()
		cmp, err := eng.Compare(tokensA, tokensB, opts)
		elapsed := time.Since(start)
		if err != nil {
			return Result{}, fmt.Errorf("case %s/%s/%d: %w", c.Method, c.Algorithm, c.ChunkSize, err)
		}

		if i == 0 {
			r.First, r.Min, r.Max = elapsed, elapsed, elapsed
			r.DifferencePercent = cmp.Result.DifferencePercent
		}
		r.Min = min(r.Min, elapsed)
		r.Max = max(r.Max, elapsed)
		total += elapsed
	}

	r.Mean = total / time.Duration(cfg.Iterations)
	return r, nil
}

// checkAgreement verifies that every method reports the same percentage for
// the same chunk size and algorithm
func checkAgreement(results []Result) error {
	type key struct {
		size      int
		algorithm types.Algorithm
	}

	seen := make(map[key]Result)
	for _, r := range results {
		k := key{r.ChunkSize, r.Algorithm}
		prev, ok := seen[k]
		if !ok {
			seen[k] = r
			continue
		}
		if prev.DifferencePercent != r.DifferencePercent {
			return fmt.Errorf("%w: %s reports %.4f%% but %s reports %.4f%% (chunk size %d, %s)",
				types.ErrInternalInconsistency, prev.Method, prev.DifferencePercent,
				r.Method, r.DifferencePercent, r.ChunkSize, r.Algorithm)
		}
	}
	return nil
}

// Row renders the result as table cells matching Headers
func (r Result) Row() []string {
	return []string{
		string(r.Method),
		string(r.Algorithm),
		strconv.Itoa(r.ChunkSize),
		formatDuration(r.First),
		formatDuration(r.Mean),
		formatDuration(r.Min),
		formatDuration(r.Max),
		strconv.FormatFloat(r.DifferencePercent, 'f', 2, 64),
	}
}

func formatDuration(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64) + "ms"
}
