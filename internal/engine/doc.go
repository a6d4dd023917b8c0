// Package engine coordinates the comparison pipeline for two HTML documents.
//
// The engine owns the shared hash cache and the worker pool and runs
// tokenize -> chunk -> hash -> compare for each request. Chunk size, hash
// algorithm, method and cache use are chosen per request through Options;
// defaults come from Config.
//
// # Basic Usage
//
//	eng, err := engine.New(engine.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	cmp, err := eng.CompareHTML(v1, v2, eng.Options())
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("DOM diff is %.2f%%\n", cmp.Result.DifferencePercent)
//
// # Line Diffs
//
// A Comparison keeps the chunks and hashes of both documents, so line-level
// changes can be derived afterwards without re-hashing:
//
//	entries, err := eng.LineDiff(cmp)
//	for _, e := range entries {
//	    fmt.Println(e.Range, e.ChangeType, e.ContentPreview)
//	}
//
// # Caching
//
// All requests of one engine share a single bounded cache keyed by algorithm
// and chunk content. Requests with different chunk sizes produce different
// chunk contents, so cached hashes never leak across chunk sizes. Cache state
// never changes results; a cold and a warm run report the same numbers.
//
// # Concurrency
//
// Engine methods are safe for concurrent use. Chunk hashing and tree-leaf
// creation run on a fixed pool of Config.Workers goroutines when
// Config.UseParallel is set; results are re-indexed to chunk order before the
// comparators see them.
package engine
