// Package workpool runs data-parallel map steps over index ranges on a fixed
// number of workers.
package workpool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool splits index ranges into contiguous batches, one per worker. Every
// batch writes only to its own indices, so callers can fill a pre-sized result
// slice without locking and observe results in their original order.
type Pool struct {
	workers int
}

// New creates a pool with the given worker count (default: runtime.NumCPU())
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Sequential returns a single-worker pool that runs everything on the caller's goroutine
func Sequential() *Pool {
	return &Pool{workers: 1}
}

// Workers returns the configured worker count
func (p *Pool) Workers() int {
	return p.workers
}

// ForEach calls fn(i) for every i in [0, n)
func (p *Pool) ForEach(n int, fn func(i int)) {
	p.ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// ForRange calls fn on disjoint [start, end) batches covering [0, n) and
// returns once all batches finished
func (p *Pool) ForRange(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	if p.workers == 1 || n == 1 {
		fn(0, n)
		return
	}

	batches := min(p.workers, n)
	batchSize := (n + batches - 1) / batches

	var g errgroup.Group
	g.SetLimit(p.workers)

	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}

	// Batches never fail
	_ = g.Wait()
}
