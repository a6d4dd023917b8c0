// Package tokenizer turns raw HTML text into an ordered, normalized token stream.
//
// The tokenizer does not build a DOM. It splits the document on tag
// boundaries and normalizes each piece so that two documents that differ only
// in insignificant whitespace or tag-name case produce identical tokens.
//
// # Basic Usage
//
//	tok := tokenizer.New()
//	tokens := tok.Tokenize(html)
//
//	for _, t := range tokens {
//	    fmt.Printf("L%d %s\n", t.Line, t.String())
//	}
//
// # Normalization
//
//   - Tags: parsed with golang.org/x/net/html, so tag names and attribute keys
//     are lowercased while attribute order and values are kept
//   - Text: runs of whitespace collapse to one space, edges are trimmed, and
//     empty runs are dropped
//   - Comments: kept as comment tokens with whitespace collapsed
//
// Markup the HTML tokenizer does not accept as a tag (for example "<3 apples>"
// or a stray "<") stays in the surrounding text. Malformed input is never an
// error.
//
// # Line Numbers
//
// Every token carries the 1-based line of its first character. Line starts are
// computed once per document and looked up with a binary search.
package tokenizer
