// Package storage provides SQLite-based persistence for comparison history.
//
// Only comparison results and their line diffs are stored; chunk hashes are
// never persisted and the hash cache stays in memory.
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migrations (semantic versions)
//   - comparisons: one row per comparison (versions, counts, percentage,
//     method, algorithm, chunk size, processing time, label)
//   - line_diffs: ordered line-diff entries of a comparison
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("/home/me/.domdrift/history.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	c := &storage.Comparison{
//	    VersionA: "v1.html",
//	    VersionB: "v2.html",
//	    Result:   cmp.Result,
//	}
//	if err := db.SaveComparison(ctx, c); err != nil {
//	    return err
//	}
//	fmt.Println("saved as", c.ID)
//
// # Transactions
//
// SaveComparison writes the comparison and its line diffs atomically. Callers
// that need several writes in one unit use BeginTx:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.SaveComparison(ctx, first)
//	_ = tx.DeleteComparison(ctx, stale.ID)
//
//	return tx.Commit()
//
// # Build Modes
//
// The driver is chosen at build time:
//
//	go build ./...                      # modernc.org/sqlite (pure Go, default)
//	go build -tags sqlite_cgo ./...     # github.com/mattn/go-sqlite3 (cgo)
//
// BuildMode and DriverName report the choice at runtime.
package storage
