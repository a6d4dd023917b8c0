package linediff

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dshills/domdrift/pkg/types"
)

const (
	// DefaultPreviewLength is the preview width in runes, excluding the symbol
	DefaultPreviewLength = 80

	ellipsis = "..."
)

// Policy tunes how differing chunks become line-diff entries
type Policy struct {
	// ModifyDistance is the largest start-line distance at which a removed and
	// an added chunk collapse into one modified entry. 0 requires equal lines.
	ModifyDistance int

	// PreviewLength truncates previews to this many runes
	PreviewLength int
}

// DefaultPolicy returns the policy used when none is configured
func DefaultPolicy() Policy {
	return Policy{
		ModifyDistance: 0,
		PreviewLength:  DefaultPreviewLength,
	}
}

// Validate checks the policy bounds
func (p Policy) Validate() error {
	if p.ModifyDistance < 0 {
		return fmt.Errorf("%w: modify distance must not be negative, got %d", types.ErrInvalidConfiguration, p.ModifyDistance)
	}
	if p.PreviewLength < 1 {
		return fmt.Errorf("%w: preview length must be positive, got %d", types.ErrInvalidConfiguration, p.PreviewLength)
	}
	return nil
}

// Side is one document of a finished comparison; Hashes[i] belongs to Chunks[i]
type Side struct {
	Chunks []types.Chunk
	Hashes []types.ChunkHash
}

// Input is the comparison context the aligner works on
type Input struct {
	A Side
	B Side
}

// change is an entry before merging and preview rendering
type change struct {
	rng      types.LineRange
	kind     types.ChangeType
	contents []string
}

// kindOrder sorts entries on the same line as removed, modified, added
var kindOrder = map[types.ChangeType]int{
	types.ChangeRemoved:  0,
	types.ChangeModified: 1,
	types.ChangeAdded:    2,
}

// Align produces the ordered line-diff entries for a comparison
func Align(in Input, policy Policy) ([]types.LineDiffEntry, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	removed, err := missing(in.A, in.B, types.ChangeRemoved)
	if err != nil {
		return nil, fmt.Errorf("document A: %w", err)
	}

	added, err := missing(in.B, in.A, types.ChangeAdded)
	if err != nil {
		return nil, fmt.Errorf("document B: %w", err)
	}

	changes := pair(removed, added, policy.ModifyDistance)

	slices.SortStableFunc(changes, func(x, y change) int {
		if c := cmp.Compare(x.rng.Start, y.rng.Start); c != 0 {
			return c
		}
		return cmp.Compare(kindOrder[x.kind], kindOrder[y.kind])
	})

	merged := merge(changes)

	entries := make([]types.LineDiffEntry, len(merged))
	for i, c := range merged {
		entries[i] = types.LineDiffEntry{
			Range:          c.rng,
			ChangeType:     c.kind,
			ContentPreview: Preview(c.kind, strings.Join(c.contents, types.ChunkSeparator), policy.PreviewLength),
		}
	}

	return entries, nil
}

// missing returns the chunks of side whose hash does not occur in other
func missing(side, other Side, kind types.ChangeType) ([]change, error) {
	if len(side.Chunks) != len(side.Hashes) {
		return nil, fmt.Errorf("%w: %d chunks but %d hashes", types.ErrInternalInconsistency, len(side.Chunks), len(side.Hashes))
	}

	present := make(map[types.ChunkHash]struct{}, len(other.Hashes))
	for _, h := range other.Hashes {
		present[h] = struct{}{}
	}

	var out []change
	for i := range side.Chunks {
		chunk := &side.Chunks[i]
		if err := chunk.Range().Validate(); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}

		if _, ok := present[side.Hashes[i]]; ok {
			continue
		}

		out = append(out, change{
			rng:      chunk.Range(),
			kind:     kind,
			contents: []string{chunk.Content},
		})
	}

	return out, nil
}

// pair walks removed and added in start-line order and collapses close
// removed/added pairs into modified changes carrying the added side.
func pair(removed, added []change, distance int) []change {
	out := make([]change, 0, len(removed)+len(added))

	i, j := 0, 0
	for i < len(removed) && j < len(added) {
		r, a := removed[i], added[j]

		switch {
		case abs(r.rng.Start-a.rng.Start) <= distance:
			a.kind = types.ChangeModified
			out = append(out, a)
			i++
			j++
		case r.rng.Start < a.rng.Start:
			out = append(out, r)
			i++
		default:
			out = append(out, a)
			j++
		}
	}

	out = append(out, removed[i:]...)
	out = append(out, added[j:]...)

	return out
}

// merge joins consecutive changes of the same kind whose ranges touch or overlap
func merge(changes []change) []change {
	var out []change

	for _, c := range changes {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.kind == c.kind && c.rng.Start <= last.rng.End+1 {
				last.rng.End = max(last.rng.End, c.rng.End)
				last.contents = append(last.contents, c.contents...)
				continue
			}
		}

		c.contents = slices.Clone(c.contents)
		out = append(out, c)
	}

	return out
}

// Preview renders content on one line, truncated to limit runes and prefixed
// with the change symbol
func Preview(kind types.ChangeType, content string, limit int) string {
	flat := strings.ReplaceAll(content, types.ChunkSeparator, " ")

	if utf8.RuneCountInString(flat) > limit {
		runes := []rune(flat)
		flat = string(runes[:limit]) + ellipsis
	}

	return kind.Symbol() + flat
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
