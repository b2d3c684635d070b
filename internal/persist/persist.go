// Package persist stores the minimal session restoration record
// across process restarts: a session token and an account id, never
// the secret.
package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoRecord indicates no restoration record is persisted
var ErrNoRecord = errors.New("no restoration record")

// Record is the persisted restoration state
type Record struct {
	Token     string
	AccountID string
	SavedAt   time.Time
}

// StateStore persists at most one restoration record in SQLite
type StateStore struct {
	db *sql.DB
}

// Open opens (and migrates) the state database at path
func Open(path string) (*StateStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			account_id TEXT NOT NULL,
			saved_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state database: %w", err)
	}

	return &StateStore{db: db}, nil
}

// Save writes the restoration record, replacing any previous one
func (s *StateStore) Save(token, accountID string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO session_state (id, token, account_id, saved_at) VALUES (1, ?, ?, ?)",
		token, accountID, time.Now(),
	)
	return err
}

// Load reads the restoration record, if any
func (s *StateStore) Load() (*Record, error) {
	record := &Record{}
	err := s.db.QueryRow(
		"SELECT token, account_id, saved_at FROM session_state WHERE id = 1",
	).Scan(&record.Token, &record.AccountID, &record.SavedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Clear removes the restoration record. Clearing an empty store is a
// no-op.
func (s *StateStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM session_state WHERE id = 1")
	return err
}

// Close closes the underlying database
func (s *StateStore) Close() error {
	return s.db.Close()
}
