// Package syncstate persists sync bookkeeping between runs.
//
// The database holds one row per collection with the watermark of the last
// successful pull, plus an append-only log of sync runs. It is a small
// embedded SQLite file next to the collection data, opened in WAL mode for
// concurrent reads.
package syncstate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the sync-state database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates a database connection at the specified path, creating parent
// directories as needed. The caller must Close() when done.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.conn.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	return db, nil
}

// Close closes the database connection after a WAL checkpoint.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	db.conn = nil
	return nil
}

// InitSchema creates the schema if it doesn't exist. Idempotent.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS watermarks (
		collection TEXT PRIMARY KEY,
		pulled_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pushed INTEGER NOT NULL,
		pulled INTEGER NOT NULL,
		errors TEXT  -- newline-joined error messages, empty on success
	);

	CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Watermark returns the last successful pull time for a collection, or nil
// if the collection has never been pulled.
func (db *DB) Watermark(ctx context.Context, collection string) (*time.Time, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx,
		"SELECT pulled_at FROM watermarks WHERE collection = ?", collection).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watermark for %s: %w", collection, err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt watermark for %s: %w", collection, err)
	}
	return &t, nil
}

// SetWatermark records the pull time for a collection.
func (db *DB) SetWatermark(ctx context.Context, collection string, pulledAt time.Time) error {
	query := `
	INSERT INTO watermarks (collection, pulled_at)
	VALUES (?, ?)
	ON CONFLICT(collection) DO UPDATE SET
		pulled_at = excluded.pulled_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		collection, pulledAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set watermark for %s: %w", collection, err)
	}
	return nil
}

// Run describes one completed sync run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Pushed     int
	Pulled     int
	Errors     []string
}

// RecordRun appends a completed sync run to the log.
func (db *DB) RecordRun(ctx context.Context, run Run) error {
	query := `
	INSERT INTO sync_runs (started_at, finished_at, pushed, pulled, errors)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Pushed,
		run.Pulled,
		strings.Join(run.Errors, "\n"),
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent sync runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
	SELECT id, started_at, finished_at, pushed, pulled, errors
	FROM sync_runs
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished, errs string
		if err := rows.Scan(&run.ID, &started, &finished, &run.Pushed, &run.Pulled, &errs); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			run.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
			run.FinishedAt = t
		}
		if errs != "" {
			run.Errors = strings.Split(errs, "\n")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}
	return runs, nil
}
