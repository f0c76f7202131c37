// Package history keeps a sqlite ledger of completed moves so past runs can
// be audited. The filesystem stays the source of truth; a ledger write that
// fails never undoes a move.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS moves (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL,
    file_name   TEXT NOT NULL,
    source      TEXT NOT NULL,
    destination TEXT NOT NULL,
    folder      TEXT NOT NULL,
    reply       TEXT NOT NULL,
    moved_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_moves_moved_at ON moves (moved_at);
`

// Move is one recorded file move.
type Move struct {
	ID          int64
	RunID       string
	FileName    string
	Source      string
	Destination string
	Folder      string
	Reply       string
	MovedAt     time.Time
}

// Store is the sqlite-backed move ledger.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the ledger database at path.
// Pass ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history database path cannot be empty")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one move to the ledger.
func (s *Store) Record(ctx context.Context, m Move) error {
	if m.MovedAt.IsZero() {
		m.MovedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moves (run_id, file_name, source, destination, folder, reply, moved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.FileName, m.Source, m.Destination, m.Folder, m.Reply, m.MovedAt)
	if err != nil {
		return fmt.Errorf("failed to record move of %s: %w", m.FileName, err)
	}
	return nil
}

// Recent returns the most recent moves, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Move, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, file_name, source, destination, folder, reply, moved_at
		 FROM moves ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query move history: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.ID, &m.RunID, &m.FileName, &m.Source, &m.Destination,
			&m.Folder, &m.Reply, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan move row: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
