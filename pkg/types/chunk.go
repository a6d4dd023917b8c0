package types

import (
	"fmt"
	"strings"
)

// ChunkSeparator joins token strings inside a chunk. Normalized tokens never
// contain a newline, so the separator is unambiguous.
const ChunkSeparator = "\n"

// Chunk is an ordered run of tokens, the unit of comparison
type Chunk struct {
	Index   int     // Position of the chunk within its document
	Content string  // Kind-prefixed token strings joined by ChunkSeparator
	Tokens  []Token // Tokens in document order

	// Location
	StartLine int
	EndLine   int
}

// Range returns the chunk's source line range
func (c *Chunk) Range() LineRange {
	return LineRange{Start: c.StartLine, End: c.EndLine}
}

// Validate checks the chunk's structural invariants
func (c *Chunk) Validate() error {
	if len(c.Tokens) == 0 {
		return fmt.Errorf("%w: chunk %d has no tokens", ErrInternalInconsistency, c.Index)
	}

	if err := c.Range().Validate(); err != nil {
		return fmt.Errorf("chunk %d: %w", c.Index, err)
	}

	return nil
}

// TokenStrings splits the chunk content back into kind-prefixed token strings
func (c *Chunk) TokenStrings() []string {
	if c.Content == "" {
		return nil
	}
	return strings.Split(c.Content, ChunkSeparator)
}
