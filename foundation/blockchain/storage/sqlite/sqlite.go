// Package sqlite implements snapshot storage on top of SQLite.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage"
	_ "modernc.org/sqlite"
)

// maxBusyTimeoutMs is how long a writer waits on a locked database.
const maxBusyTimeoutMs = 5000

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	blocks   INTEGER NOT NULL,
	tip      TEXT    NOT NULL,
	taken    TEXT    NOT NULL,
	format   TEXT    NOT NULL DEFAULT '',
	document BLOB    NOT NULL
)`

// SQLite represents the storage implementation for keeping snapshots in a
// SQLite database. Only the latest row is kept. This implements the
// storage.Storage interface.
type SQLite struct {
	db *sql.DB
}

// New opens or creates the database file at the specified path.
func New(file string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.Clean(file)))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", maxBusyTimeoutMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Write inserts the snapshot and prunes older rows.
func (s *SQLite) Write(snapshot storage.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO snapshots (blocks, tip, taken, format, document) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.Exec(insert, snapshot.Blocks, snapshot.Tip, snapshot.Taken.UTC().Format(time.RFC3339Nano), snapshot.Format, snapshot.Document)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE id < ?`, id); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return tx.Commit()
}

// Read returns the latest snapshot.
func (s *SQLite) Read() (storage.Snapshot, error) {
	const q = `SELECT blocks, tip, taken, format, document FROM snapshots ORDER BY id DESC LIMIT 1`

	var snapshot storage.Snapshot
	var taken string
	err := s.db.QueryRow(q).Scan(&snapshot.Blocks, &snapshot.Tip, &taken, &snapshot.Format, &snapshot.Document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNoSnapshot
		}
		return storage.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	snapshot.Taken, _ = time.Parse(time.RFC3339Nano, taken)

	return snapshot, nil
}

// Reset removes every snapshot.
func (s *SQLite) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("reset snapshots: %w", err)
	}
	return nil
}
