package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Comparisons table
CREATE TABLE IF NOT EXISTS comparisons (
    id TEXT PRIMARY KEY,
    version_a TEXT NOT NULL,
    version_b TEXT NOT NULL,
    method TEXT NOT NULL,
    algorithm TEXT NOT NULL,
    chunk_size INTEGER NOT NULL,
    total_chunks_a INTEGER NOT NULL,
    total_chunks_b INTEGER NOT NULL,
    common_chunks INTEGER NOT NULL,
    different_chunks INTEGER NOT NULL,
    difference_percent REAL NOT NULL,
    processing_time_ns INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comparisons_created ON comparisons(created_at);
CREATE INDEX IF NOT EXISTS idx_comparisons_versions ON comparisons(version_a, version_b);

-- Line diffs table
CREATE TABLE IF NOT EXISTS line_diffs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    comparison_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    change_type TEXT NOT NULL CHECK (change_type IN ('added', 'removed', 'modified')),
    content_preview TEXT NOT NULL,
    FOREIGN KEY (comparison_id) REFERENCES comparisons(id) ON DELETE CASCADE,
    UNIQUE(comparison_id, position)
);

CREATE INDEX IF NOT EXISTS idx_line_diffs_comparison ON line_diffs(comparison_id);
`

const migrationV1Down = `
DROP TABLE IF EXISTS line_diffs;
DROP TABLE IF EXISTS comparisons;
DROP TABLE IF EXISTS schema_version;
`

const migrationV11Up = `
-- Free-form label for grouping runs, e.g. a CI build or branch
ALTER TABLE comparisons ADD COLUMN label TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_comparisons_label ON comparisons(label);
`

const migrationV11Down = `
DROP INDEX IF EXISTS idx_comparisons_label;
ALTER TABLE comparisons DROP COLUMN label;
`

// SchemaVersion returns the highest applied migration version, 0.0.0 for a
// fresh database
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// Versions applied within the same second share applied_at, so the
	// highest semantic version decides
	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}

	return current, rows.Err()
}

// ApplyMigrations runs all pending migrations, each in its own transaction
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if err := runMigration(ctx, db, migration.Up, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version)
			return err
		}); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	var migration *Migration
	for i := range AllMigrations {
		if semver.MustParse(AllMigrations[i].Version).Equal(currentVersion) {
			migration = &AllMigrations[i]
			break
		}
	}

	if migration == nil {
		return fmt.Errorf("no migration to roll back at version %s", currentVersion)
	}

	// The first migration drops schema_version itself
	record := func(tx *sql.Tx) error {
		if migration.Version == AllMigrations[0].Version {
			return nil
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version)
		return err
	}

	if err := runMigration(ctx, db, migration.Down, record); err != nil {
		return fmt.Errorf("failed to roll back migration %s: %w", migration.Version, err)
	}

	return nil
}

// runMigration executes script and record in one transaction
func runMigration(ctx context.Context, db *sql.DB, script string, record func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}

	if err := record(tx); err != nil {
		return err
	}

	return tx.Commit()
}
