// Package dedupe implements the deduplication gate on SQLite. The store
// outlives a single run, so completed downloads are skipped across restarts
// and a stopped run can be resumed by simply resubmitting the full list.
package dedupe

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed DeduplicationGate.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path and initializes its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("dedupe: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dedupe: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS downloads (
		content_id   TEXT PRIMARY KEY,
		retrieved_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("dedupe: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// AlreadyRetrieved reports whether contentID was completed in this or any
// earlier run.
func (s *Store) AlreadyRetrieved(ctx context.Context, contentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM downloads WHERE content_id = ?`, contentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedupe: query %s: %w", contentID, err)
	}
	return true, nil
}

// MarkRetrieved records a completed download. Idempotent: marking the same
// contentID twice is a no-op.
func (s *Store) MarkRetrieved(ctx context.Context, contentID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (content_id, retrieved_at) VALUES (?, ?)
		 ON CONFLICT(content_id) DO NOTHING`,
		contentID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("dedupe: mark %s: %w", contentID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
