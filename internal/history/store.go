// Package history keeps a SQLite log of scan and count runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Run modes.
const (
	ModeScan  = "scan"
	ModeCount = "count"
)

// Run is one recorded scan or count.
type Run struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Mode      string
	Filter    string // human-readable predicate, empty for unfiltered scans
	Folders   int
	Matched   int64 // matched files for a scan, counted entries for a count
	Errors    int
	// FailedFolders lists the folders that could not be traversed
	FailedFolders []string
}

// Store manages the history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry retries stmt with exponential backoff while the database is locked.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts run and sets its ID.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.Mode == "" {
		return fmt.Errorf("record run: mode is required")
	}
	failed := "[]"
	if len(run.FailedFolders) > 0 {
		data, err := json.Marshal(run.FailedFolders)
		if err != nil {
			return fmt.Errorf("marshal failed folders: %w", err)
		}
		failed = string(data)
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO scan_runs
		(started_at, duration_ms, mode, filter, folders, matched, errors, failed_folders)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		startedAt.UTC(),
		run.Duration.Milliseconds(),
		run.Mode,
		run.Filter,
		run.Folders,
		run.Matched,
		run.Errors,
		failed,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	run.ID = id
	run.StartedAt = startedAt
	return nil
}

// Recent returns up to limit runs, most recent first. limit < 1 returns every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, started_at, duration_ms, mode, filter, folders, matched, errors, failed_folders
		FROM scan_runs
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		var durationMs int64
		var failed sql.NullString
		if err := rows.Scan(&run.ID, &run.StartedAt, &durationMs, &run.Mode, &run.Filter,
			&run.Folders, &run.Matched, &run.Errors, &failed); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		if failed.Valid && failed.String != "" {
			if err := json.Unmarshal([]byte(failed.String), &run.FailedFolders); err != nil {
				return nil, fmt.Errorf("unmarshal failed folders for run %d: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scan runs: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM scan_runs
		WHERE id NOT IN (SELECT id FROM scan_runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune scan runs: %w", err)
	}
	return result.RowsAffected()
}
