// Package linediff maps chunk-level differences back to source line ranges.
//
// Chunks of the second document whose hash is missing from the first are
// reported as added, chunks of the first missing from the second as removed.
// A removed and an added chunk starting on nearby lines collapse into a single
// modified entry; how near is controlled by Policy.ModifyDistance. Adjacent
// entries of the same kind merge, so three added lines become one L4-L6 entry.
//
// Example:
//
//	entries, err := linediff.Align(linediff.Input{
//	    A: linediff.Side{Chunks: chunksA, Hashes: hashesA},
//	    B: linediff.Side{Chunks: chunksB, Hashes: hashesB},
//	}, linediff.DefaultPolicy())
//	for _, e := range entries {
//	    fmt.Println(e.Range, e.ChangeType, e.ContentPreview)
//	}
package linediff
