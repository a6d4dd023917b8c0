package types

import (
	"fmt"
	"strings"
	"time"
)

// Method names the comparison algorithm that produced a result
type Method string

const (
	// MethodLite compares flat sets of chunk hashes
	MethodLite Method = "lite"
	// MethodTree builds a binary hash tree per document first
	MethodTree Method = "tree"
)

// ParseMethod converts a configuration string to a Method
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodLite, "flat", "set":
		return MethodLite, nil
	case MethodTree, "merkle":
		return MethodTree, nil
	default:
		return "", fmt.Errorf("%w: unknown comparison method %q", ErrInvalidConfiguration, s)
	}
}

// ComparisonResult holds the difference metrics of one comparison
type ComparisonResult struct {
	// Chunk counts
	TotalChunksA    int
	TotalChunksB    int
	CommonChunks    int
	DifferentChunks int

	// Metric
	DifferencePercent float64

	// Request
	Method    Method
	Algorithm Algorithm
	ChunkSize int

	ProcessingTime time.Duration
}

// DifferencePercent computes differing/(common+differing)*100, or 0 when both are zero
func DifferencePercent(common, differing int) float64 {
	total := common + differing
	if total == 0 {
		return 0
	}
	return float64(differing) / float64(total) * 100
}

// Identical reports whether the two documents produced the same chunk-hash sets
func (r *ComparisonResult) Identical() bool {
	return r.DifferentChunks == 0
}

// ChangeType classifies a line-diff entry
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// ParseChangeType converts a stored string to a ChangeType
func ParseChangeType(s string) (ChangeType, error) {
	switch ChangeType(s) {
	case ChangeAdded, ChangeRemoved, ChangeModified:
		return ChangeType(s), nil
	default:
		return "", fmt.Errorf("invalid change type %q", s)
	}
}

// Symbol returns the preview prefix for the change type
func (c ChangeType) Symbol() string {
	switch c {
	case ChangeAdded:
		return "+"
	case ChangeRemoved:
		return "-"
	case ChangeModified:
		return "~"
	default:
		return "?"
	}
}

// LineRange is an inclusive, 1-based range of source lines
type LineRange struct {
	Start int
	End   int
}

// Validate checks that the range is positive and not reversed
func (r LineRange) Validate() error {
	if r.Start <= 0 || r.End <= 0 {
		return fmt.Errorf("%w: line numbers must be positive (L%d-L%d)", ErrInternalInconsistency, r.Start, r.End)
	}

	if r.Start > r.End {
		return fmt.Errorf("%w: reversed line range L%d-L%d", ErrInternalInconsistency, r.Start, r.End)
	}

	return nil
}

// String formats the range as "L16" or "L100-L120"
func (r LineRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("L%d", r.Start)
	}
	return fmt.Sprintf("L%d-L%d", r.Start, r.End)
}

// ParseLineRange is the inverse of LineRange.String
func ParseLineRange(s string) (LineRange, error) {
	var r LineRange
	if n, err := fmt.Sscanf(s, "L%d-L%d", &r.Start, &r.End); err == nil && n == 2 {
		return r, r.Validate()
	}
	if n, err := fmt.Sscanf(s, "L%d", &r.Start); err == nil && n == 1 {
		r.End = r.Start
		return r, r.Validate()
	}
	return LineRange{}, fmt.Errorf("invalid line range %q", s)
}

// LineDiffEntry is one classified range of changed source lines
type LineDiffEntry struct {
	Range          LineRange
	ChangeType     ChangeType
	ContentPreview string
}
