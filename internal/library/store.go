// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps saved search results in a local SQLite database so
// they can be browsed and exported without calling Wikipedia again.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/novelist-almanac/pkg/types"
)

const (
	dbFile            = "almanac.db"
	defaultMaxResults = 50
)

// now is replaced in tests.
var now = time.Now

// Store manages the library database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates the library at cfg.Dir/almanac.db and creates the
// schema if it does not exist.
func Open(cfg types.LibraryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "library"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the library directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dates (
			month INTEGER NOT NULL,
			day INTEGER NOT NULL,
			extracted INTEGER NOT NULL DEFAULT 0,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (month, day)
		)`,
		`CREATE TABLE IF NOT EXISTS novelists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			month INTEGER NOT NULL,
			day INTEGER NOT NULL,
			position INTEGER NOT NULL,
			year TEXT,
			name TEXT NOT NULL,
			description TEXT,
			raw_text TEXT,
			thumbnail_url TEXT,
			UNIQUE (month, day, position),
			FOREIGN KEY (month, day) REFERENCES dates(month, day) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_novelists_date ON novelists(month, day)`,
		`CREATE INDEX IF NOT EXISTS idx_novelists_name ON novelists(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored cards for date. extracted is the number of people
// parsed from the section before filtering.
func (s *Store) Save(ctx context.Context, date types.BirthDate, extracted int, cards []types.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM novelists WHERE month = ? AND day = ?`, date.Month, date.Day,
	); err != nil {
		return fmt.Errorf("deleting old cards: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO dates (month, day, extracted, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(month, day) DO UPDATE SET
			extracted=excluded.extracted, fetched_at=excluded.fetched_at`,
		date.Month, date.Day, extracted, now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting date: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO novelists (month, day, position, year, name, description, raw_text, thumbnail_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range cards {
		if _, err := stmt.ExecContext(ctx,
			date.Month, date.Day, i, c.Year, c.Name, c.Description, c.RawText, c.ThumbnailURL,
		); err != nil {
			return fmt.Errorf("inserting %s: %w", c.Name, err)
		}
	}

	return tx.Commit()
}
