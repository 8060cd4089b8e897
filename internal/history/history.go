// Package history persists REPL inputs in a local SQLite database. History
// is best effort: a nil *Store is valid and drops everything, and storage
// failures are logged, never surfaced to evaluation.
package history

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	ts    TEXT NOT NULL,
	input TEXT NOT NULL
)`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Append records one executed input.
func (s *Store) Append(input string) {
	if s == nil {
		return
	}
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.Exec(`INSERT INTO entries (ts, input) VALUES (?, ?)`, ts, input); err != nil {
		slog.Warn("failed to append history entry", slog.Any("error", err))
	}
}

// Recent returns up to limit inputs in chronological order.
func (s *Store) Recent(limit int) []string {
	if s == nil {
		return nil
	}
	rows, err := s.db.Query(`SELECT input FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		slog.Warn("failed to load history", slog.Any("error", err))
		return nil
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var input string
		if err := rows.Scan(&input); err != nil {
			slog.Warn("failed to scan history entry", slog.Any("error", err))
			continue
		}
		entries = append(entries, input)
	}
	if err := rows.Err(); err != nil {
		slog.Warn("failed to read history", slog.Any("error", err))
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
