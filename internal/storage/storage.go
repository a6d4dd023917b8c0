package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/domdrift/internal/report"
	"github.com/dshills/domdrift/pkg/types"
)

// Storage defines the interface for persisting and querying comparison history
type Storage interface {
	// Comparison operations
	SaveComparison(ctx context.Context, c *Comparison) error
	GetComparison(ctx context.Context, id string) (*Comparison, error)
	ListComparisons(ctx context.Context, filter ListFilter) ([]*Comparison, error)
	DeleteComparison(ctx context.Context, id string) error

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}

// Comparison is one stored comparison run
type Comparison struct {
	ID       string // UUIDv7, assigned on save when empty
	Label    string
	VersionA string
	VersionB string

	Result    types.ComparisonResult
	LineDiffs []types.LineDiffEntry // Not loaded by ListComparisons

	// LineDiffCount is filled by reads, including ListComparisons
	LineDiffCount int

	CreatedAt time.Time
}

// ListFilter narrows ListComparisons
type ListFilter struct {
	Limit   int    // Maximum rows (default: 20)
	Version string // Match either version name
	Label   string
}

// DefaultListLimit applies when ListFilter.Limit is not positive
const DefaultListLimit = 20

// Status contains statistics about the history database
type Status struct {
	SchemaVersion    string
	ComparisonsCount int
	LineDiffsCount   int
	LastComparisonAt time.Time
	DatabaseSizeMB   float64
	BuildMode        string
	DriverName       string
	Health           HealthStatus
}

// HealthStatus represents the health of the database
type HealthStatus struct {
	DatabaseAccessible bool
	SchemaCurrent      bool
}

// NewID returns a new time-ordered comparison ID
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate comparison id: %w", err)
	}
	return id.String(), nil
}

// FromReport converts a report to a storable comparison, keeping its ID
func FromReport(r *report.Report) (*Comparison, error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, fmt.Errorf("invalid report line diffs: %w", err)
	}

	return &Comparison{
		ID:            r.ID,
		VersionA:      r.VersionA,
		VersionB:      r.VersionB,
		Result:        r.Result(),
		LineDiffs:     entries,
		LineDiffCount: len(entries),
		CreatedAt:     r.CreatedAt,
	}, nil
}

// Report converts the comparison to its serialized report form
func (c *Comparison) Report() *report.Report {
	r := &report.Report{
		ID:                c.ID,
		CreatedAt:         c.CreatedAt,
		VersionA:          c.VersionA,
		VersionB:          c.VersionB,
		DifferencePercent: c.Result.DifferencePercent,
		TotalChunksA:      c.Result.TotalChunksA,
		TotalChunksB:      c.Result.TotalChunksB,
		CommonChunks:      c.Result.CommonChunks,
		DifferentChunks:   c.Result.DifferentChunks,
		Method:            string(c.Result.Method),
		Algorithm:         string(c.Result.Algorithm),
		ChunkSize:         c.Result.ChunkSize,
		ProcessingTime:    float64(c.Result.ProcessingTime) / float64(time.Millisecond),
	}

	for _, e := range c.LineDiffs {
		r.LineDiffs = append(r.LineDiffs, report.LineDiff{
			LineRange:      e.Range.String(),
			ChangeType:     string(e.ChangeType),
			ContentPreview: e.ContentPreview,
		})
	}

	return r
}
