package chunker

import (
	"fmt"
	"strings"

	"github.com/dshills/domdrift/pkg/types"
)

// Chunker splits token streams into runs of at most Size tokens
type Chunker struct {
	size int
}

// New creates a new Chunker for the given chunk size
func New(size int) (*Chunker, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be at least 1, got %d", types.ErrInvalidConfiguration, size)
	}
	return &Chunker{size: size}, nil
}

// Size returns the configured chunk size in tokens
func (c *Chunker) Size() int {
	return c.size
}

// Chunk groups tokens into consecutive chunks; the final chunk may be shorter
func (c *Chunker) Chunk(tokens []types.Token) []types.Chunk {
	if len(tokens) == 0 {
		return nil
	}

	chunks := make([]types.Chunk, 0, (len(tokens)+c.size-1)/c.size)

	for start := 0; start < len(tokens); start += c.size {
		end := min(start+c.size, len(tokens))
		chunks = append(chunks, newChunk(len(chunks), tokens[start:end]))
	}

	return chunks
}

// newChunk builds a chunk from a non-empty token run
func newChunk(index int, run []types.Token) types.Chunk {
	var content strings.Builder
	for i, tok := range run {
		if i > 0 {
			content.WriteString(types.ChunkSeparator)
		}
		content.WriteString(tok.String())
	}

	return types.Chunk{
		Index:     index,
		Content:   content.String(),
		Tokens:    run,
		StartLine: run[0].Line,
		EndLine:   run[len(run)-1].Line,
	}
}

// Tokens reconstructs the token stream from chunk contents. Line numbers are
// taken from the chunks' own token slices.
func Tokens(chunks []types.Chunk) ([]types.Token, error) {
	var tokens []types.Token

	for i := range chunks {
		parts := chunks[i].TokenStrings()
		if len(parts) != len(chunks[i].Tokens) {
			return nil, fmt.Errorf("%w: chunk %d content holds %d tokens, expected %d",
				types.ErrInternalInconsistency, chunks[i].Index, len(parts), len(chunks[i].Tokens))
		}

		for j, part := range parts {
			tok, err := types.ParseToken(part)
			if err != nil {
				return nil, fmt.Errorf("chunk %d: %w", chunks[i].Index, err)
			}
			tok.Line = chunks[i].Tokens[j].Line
			tokens = append(tokens, tok)
		}
	}

	return tokens, nil
}
