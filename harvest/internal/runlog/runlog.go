// Package runlog records harvest attempts in an SQLite log.
//
// One row per source per run: whether the fetch succeeded, how it was
// classified when it did not, and how many raw records it produced. The
// log is purely observational; a harvest never fails because the log
// could not be written.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/moisson/dbopen"
)

// Schema is the run log table definition, applied on open.
const Schema = `
CREATE TABLE IF NOT EXISTS harvest_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	reason TEXT NOT NULL DEFAULT '',
	rows INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	fetched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_harvest_log_source ON harvest_log(source, fetched_at);
`

// Statuses of a run log entry.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Entry is one harvest attempt.
type Entry struct {
	ID           int64
	Source       string
	URL          string
	Status       string
	StatusCode   int
	Reason       string
	Rows         int
	ErrorMessage string
	DurationMs   int64
	FetchedAt    time.Time
}

// Store wraps the run log database.
type Store struct {
	DB *sql.DB
}

// Open opens (and creates, if needed) the run log at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.DB.Close() }

// Insert records one harvest attempt.
func (s *Store) Insert(ctx context.Context, e *Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now().UTC()
	}
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO harvest_log (source, url, status, status_code, reason,
		rows, error_message, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Source, e.URL, e.Status, e.StatusCode, e.Reason,
		e.Rows, e.ErrorMessage, e.DurationMs, e.FetchedAt.Format(time.RFC3339),
	)
	return err
}

// History returns the log entries for a source, newest first.
func (s *Store) History(ctx context.Context, source string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, source, url, status, status_code, reason,
		rows, error_message, duration_ms, fetched_at
		FROM harvest_log WHERE source = ?
		ORDER BY fetched_at DESC, id DESC LIMIT ?`, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		var e Entry
		var fetchedAt string
		if err := rows.Scan(&e.ID, &e.Source, &e.URL, &e.Status, &e.StatusCode,
			&e.Reason, &e.Rows, &e.ErrorMessage, &e.DurationMs, &fetchedAt); err != nil {
			return nil, fmt.Errorf("runlog: scan: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
			e.FetchedAt = t
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
