package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/domdrift/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer; ":memory:" also needs the one
	// connection to stay alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Comparison operations

const comparisonColumns = `
	c.id, c.label, c.version_a, c.version_b, c.method, c.algorithm, c.chunk_size,
	c.total_chunks_a, c.total_chunks_b, c.common_chunks, c.different_chunks,
	c.difference_percent, c.processing_time_ns, c.created_at,
	(SELECT COUNT(*) FROM line_diffs d WHERE d.comparison_id = c.id)
`

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanComparison(row rowScanner) (*Comparison, error) {
	var c Comparison
	var method, algorithm string
	var processingNS int64

	err := row.Scan(
		&c.ID, &c.Label, &c.VersionA, &c.VersionB, &method, &algorithm, &c.Result.ChunkSize,
		&c.Result.TotalChunksA, &c.Result.TotalChunksB, &c.Result.CommonChunks, &c.Result.DifferentChunks,
		&c.Result.DifferencePercent, &processingNS, &c.CreatedAt,
		&c.LineDiffCount,
	)
	if err != nil {
		return nil, err
	}

	c.Result.Method = types.Method(method)
	c.Result.Algorithm = types.Algorithm(algorithm)
	c.Result.ProcessingTime = time.Duration(processingNS)

	return &c, nil
}

// saveComparisonWithQuerier inserts the comparison row and its line diffs
func (s *SQLiteStorage) saveComparisonWithQuerier(ctx context.Context, q querier, c *Comparison) error {
	if c.ID == "" {
		id, err := NewID()
		if err != nil {
			return err
		}
		c.ID = id
	}

	for i, e := range c.LineDiffs {
		if err := e.Range.Validate(); err != nil {
			return fmt.Errorf("line diff %d: %w", i, err)
		}
	}

	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM comparisons WHERE id = ?", c.ID).Scan(&exists)
	if err == nil {
		return fmt.Errorf("comparison %s: %w", c.ID, ErrAlreadyExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check comparison: %w", err)
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	query := `
		INSERT INTO comparisons (
			id, label, version_a, version_b, method, algorithm, chunk_size,
			total_chunks_a, total_chunks_b, common_chunks, different_chunks,
			difference_percent, processing_time_ns, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		c.ID, c.Label, c.VersionA, c.VersionB, string(c.Result.Method), string(c.Result.Algorithm), c.Result.ChunkSize,
		c.Result.TotalChunksA, c.Result.TotalChunksB, c.Result.CommonChunks, c.Result.DifferentChunks,
		c.Result.DifferencePercent, c.Result.ProcessingTime.Nanoseconds(), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comparison: %w", err)
	}

	for i, e := range c.LineDiffs {
		_, err := q.ExecContext(ctx, `
			INSERT INTO line_diffs (comparison_id, position, start_line, end_line, change_type, content_preview)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, i, e.Range.Start, e.Range.End, string(e.ChangeType), e.ContentPreview)
		if err != nil {
			return fmt.Errorf("failed to insert line diff %d: %w", i, err)
		}
	}

	c.LineDiffCount = len(c.LineDiffs)
	return nil
}

// SaveComparison stores a comparison and its line diffs in one transaction
func (s *SQLiteStorage) SaveComparison(ctx context.Context, c *Comparison) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveComparisonWithQuerier(ctx, tx, c); err != nil {
		return err
	}

	return tx.Commit()
}

// getComparisonWithQuerier loads a comparison including its line diffs
func (s *SQLiteStorage) getComparisonWithQuerier(ctx context.Context, q querier, id string) (*Comparison, error) {
	row := q.QueryRowContext(ctx, "SELECT "+comparisonColumns+" FROM comparisons c WHERE c.id = ?", id)
	c, err := scanComparison(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT start_line, end_line, change_type, content_preview
		FROM line_diffs
		WHERE comparison_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get line diffs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e types.LineDiffEntry
		var changeType string
		if err := rows.Scan(&e.Range.Start, &e.Range.End, &changeType, &e.ContentPreview); err != nil {
			return nil, err
		}
		e.ChangeType = types.ChangeType(changeType)
		c.LineDiffs = append(c.LineDiffs, e)
	}

	return c, rows.Err()
}

// GetComparison loads a comparison by ID
func (s *SQLiteStorage) GetComparison(ctx context.Context, id string) (*Comparison, error) {
	return s.getComparisonWithQuerier(ctx, s.querier(), id)
}

// listComparisonsWithQuerier returns the newest comparisons first
func (s *SQLiteStorage) listComparisonsWithQuerier(ctx context.Context, q querier, filter ListFilter) ([]*Comparison, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var where []string
	var args []any

	if filter.Version != "" {
		where = append(where, "(c.version_a = ? OR c.version_b = ?)")
		args = append(args, filter.Version, filter.Version)
	}
	if filter.Label != "" {
		where = append(where, "c.label = ?")
		args = append(args, filter.Label)
	}

	query := "SELECT " + comparisonColumns + " FROM comparisons c"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Comparison
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// ListComparisons returns stored comparisons, newest first, without line diffs
func (s *SQLiteStorage) ListComparisons(ctx context.Context, filter ListFilter) ([]*Comparison, error) {
	return s.listComparisonsWithQuerier(ctx, s.querier(), filter)
}

// deleteComparisonWithQuerier removes a comparison and its line diffs
func (s *SQLiteStorage) deleteComparisonWithQuerier(ctx context.Context, q querier, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM line_diffs WHERE comparison_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete line diffs: %w", err)
	}

	result, err := q.ExecContext(ctx, "DELETE FROM comparisons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete comparison: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteComparison removes a comparison by ID
func (s *SQLiteStorage) DeleteComparison(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteComparisonWithQuerier(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Status operations

// GetStatus returns counts and health of the history database
func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{
		BuildMode:  BuildMode,
		DriverName: DriverName,
	}

	if err := s.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Health.DatabaseAccessible = true

	version, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}
	status.SchemaVersion = version.String()
	status.Health.SchemaCurrent = status.SchemaVersion == CurrentSchemaVersion

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comparisons").Scan(&status.ComparisonsCount); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM line_diffs").Scan(&status.LineDiffsCount); err != nil {
		return nil, err
	}

	// Selecting the column keeps its TIMESTAMP type; MAX() would return text
	err = s.db.QueryRowContext(ctx, "SELECT created_at FROM comparisons ORDER BY created_at DESC LIMIT 1").Scan(&status.LastComparisonAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var pageCount, pageSize int
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		err = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		if err == nil {
			status.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
		}
	}

	return status, nil
}

// Transaction methods

func (t *sqliteTx) SaveComparison(ctx context.Context, c *Comparison) error {
	return t.storage.saveComparisonWithQuerier(ctx, t.querier(), c)
}

func (t *sqliteTx) GetComparison(ctx context.Context, id string) (*Comparison, error) {
	return t.storage.getComparisonWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListComparisons(ctx context.Context, filter ListFilter) ([]*Comparison, error) {
	return t.storage.listComparisonsWithQuerier(ctx, t.querier(), filter)
}

func (t *sqliteTx) DeleteComparison(ctx context.Context, id string) error {
	return t.storage.deleteComparisonWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return nil, errors.New("status is not available inside a transaction")
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions not supported")
}
