// Package types provides shared type definitions for domdrift.
//
// This package defines the domain types passed between the tokenizer, chunker,
// hash engine, comparators and line-diff aligner, plus the sentinel errors
// callers match with errors.Is.
//
// # Core Types
//
// Token is one normalized unit of an HTML document in document order:
//
//	tok := types.Token{Kind: types.TokenTagOpen, Content: "<div>", Line: 3}
//	tok.String() // "TAG:<div>"
//
// Chunk groups consecutive tokens; its Content is the kind-prefixed token
// strings joined by ChunkSeparator:
//
//	chunk := types.Chunk{Index: 0, Content: "TAG:<h1>\nTEXT:Title", StartLine: 3, EndLine: 3}
//
// ChunkHash is a fixed-width digest tagged with the algorithm that produced it.
// Two hashes are equal only when both the algorithm and the digest match, so
// ChunkHash values can be used directly as map keys.
//
// # Results
//
// ComparisonResult carries the chunk counts and the difference percentage:
//
//	differing / (common + differing) * 100
//
// computed over the sets of chunk hashes of both documents. LineDiffEntry maps
// differing chunks back to source line ranges.
package types
