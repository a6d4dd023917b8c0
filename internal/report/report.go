// Package report converts comparison results to their JSON report form and
// writes timestamped report files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/dshills/domdrift/pkg/types"
)

// TimestampFormat is the UTC timestamp embedded in report filenames
const TimestampFormat = "20060102T150405Z"

// LineDiff is the serialized form of a types.LineDiffEntry
type LineDiff struct {
	LineRange      string `json:"line_range"`
	ChangeType     string `json:"change_type"`
	ContentPreview string `json:"content_preview"`
}

// Report is the serialized form of one comparison
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VersionA string `json:"version_a"`
	VersionB string `json:"version_b"`

	DifferencePercent float64 `json:"difference_percent"`
	TotalChunksA      int     `json:"total_chunks_a"`
	TotalChunksB      int     `json:"total_chunks_b"`
	CommonChunks      int     `json:"common_chunks"`
	DifferentChunks   int     `json:"different_chunks"`

	Method    string `json:"method"`
	Algorithm string `json:"algorithm"`
	ChunkSize int    `json:"chunk_size"`

	// ProcessingTime is in milliseconds
	ProcessingTime float64 `json:"processing_time"`

	LineDiffs []LineDiff `json:"line_diffs,omitempty"`
}

// New builds a report with a fresh time-ordered ID
func New(versionA, versionB string, result types.ComparisonResult, entries []types.LineDiffEntry) (*Report, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report id: %w", err)
	}

	r := &Report{
		ID:                id.String(),
		CreatedAt:         time.Now().UTC(),
		VersionA:          versionA,
		VersionB:          versionB,
		DifferencePercent: result.DifferencePercent,
		TotalChunksA:      result.TotalChunksA,
		TotalChunksB:      result.TotalChunksB,
		CommonChunks:      result.CommonChunks,
		DifferentChunks:   result.DifferentChunks,
		Method:            string(result.Method),
		Algorithm:         string(result.Algorithm),
		ChunkSize:         result.ChunkSize,
		ProcessingTime:    float64(result.ProcessingTime) / float64(time.Millisecond),
	}

	for _, e := range entries {
		r.LineDiffs = append(r.LineDiffs, LineDiff{
			LineRange:      e.Range.String(),
			ChangeType:     string(e.ChangeType),
			ContentPreview: e.ContentPreview,
		})
	}

	return r, nil
}

// Result converts the report back to a ComparisonResult
func (r *Report) Result() types.ComparisonResult {
	return types.ComparisonResult{
		TotalChunksA:      r.TotalChunksA,
		TotalChunksB:      r.TotalChunksB,
		CommonChunks:      r.CommonChunks,
		DifferentChunks:   r.DifferentChunks,
		DifferencePercent: r.DifferencePercent,
		Method:            types.Method(r.Method),
		Algorithm:         types.Algorithm(r.Algorithm),
		ChunkSize:         r.ChunkSize,
		ProcessingTime:    time.Duration(r.ProcessingTime * float64(time.Millisecond)),
	}
}

// Entries parses the serialized line diffs
func (r *Report) Entries() ([]types.LineDiffEntry, error) {
	entries := make([]types.LineDiffEntry, 0, len(r.LineDiffs))
	for _, d := range r.LineDiffs {
		rng, err := types.ParseLineRange(d.LineRange)
		if err != nil {
			return nil, err
		}
		kind, err := types.ParseChangeType(d.ChangeType)
		if err != nil {
			return nil, err
		}
		entries = append(entries, types.LineDiffEntry{
			Range:          rng,
			ChangeType:     kind,
			ContentPreview: d.ContentPreview,
		})
	}
	return entries, nil
}

// JSON returns the indented JSON encoding of the report
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// Filename returns comparison_<a>_vs_<b>_<timestamp>.json with both version
// names reduced to filesystem-safe slugs
func Filename(versionA, versionB string, at time.Time) string {
	return fmt.Sprintf("comparison_%s_vs_%s_%s.json",
		versionSlug(versionA), versionSlug(versionB), at.UTC().Format(TimestampFormat))
}

// versionSlug uses the file's base name so directory parts never leak in
func versionSlug(version string) string {
	s := slug.Make(filepath.Base(version))
	if s == "" {
		return "unnamed"
	}
	return s
}

// Write stores the report under dir and returns the file path
func Write(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := r.JSON()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, Filename(r.VersionA, r.VersionB, r.CreatedAt))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// Read loads a report file written by Write
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", strings.TrimSpace(filepath.Base(path)), err)
	}

	return &r, nil
}
