// Package chunker groups a token stream into fixed-size chunks, the unit of comparison.
//
// # Basic Usage
//
//	c, err := chunker.New(4)
//	if err != nil {
//	    log.Fatal(err) // chunk size must be at least 1
//	}
//
//	for _, chunk := range c.Chunk(tokens) {
//	    fmt.Printf("Chunk %d: lines %d-%d\n", chunk.Index, chunk.StartLine, chunk.EndLine)
//	}
//
// # Chunk Content
//
// A chunk's Content joins the kind-prefixed form of each token with a newline:
//
//	TAG:<div>
//	TAG:<h1>
//	TEXT:Title
//
// Two chunks have equal content exactly when their token kind/content
// sequences match, so comparison reduces to hashing Content. Tokens reverses
// the process and reproduces the original token stream.
//
// The chunk size belongs to the request, not to the document: chunks built with
// one size are never comparable with chunks built with another.
package chunker
