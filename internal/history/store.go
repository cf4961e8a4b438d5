// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion outcomes in a SQLite journal. The
// journal is an optional sink: the convert command appends to it and the
// history command reads it, but the conversion chain itself never does.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docpress/pkg/types"
)

const defaultLimit = 20

// Store manages the conversion history database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the journal database at path, creating parent
// directories and the schema when missing.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			output TEXT,
			engine TEXT,
			succeeded INTEGER NOT NULL,
			compressed INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			attempts TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one outcome to the journal. The attempt log is stored as
// a JSON blob alongside the summary columns.
func (s *Store) Record(ctx context.Context, outcome *types.ConversionOutcome) error {
	attemptsJSON, err := json.Marshal(outcome.Attempts)
	if err != nil {
		return fmt.Errorf("marshaling attempts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, source, output, engine, succeeded, compressed, duration_ms, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.ID, outcome.Source, outcome.Output, outcome.Engine,
		boolInt(outcome.Succeeded), boolInt(outcome.Compressed),
		outcome.Duration.Milliseconds(), string(attemptsJSON),
		outcome.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion %s: %w", outcome.ID, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Entry is one journal row as shown by the history command.
type Entry struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Output     string        `json:"output,omitempty"`
	Engine     string        `json:"engine,omitempty"`
	Succeeded  bool          `json:"succeeded"`
	Compressed bool          `json:"compressed"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Recent returns the most recent entries, newest first. A non-positive
// limit falls back to the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, output, engine, succeeded, compressed, duration_ms, created_at
		 FROM conversions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			succeeded, compressed int
			durationMS            int64
			createdAt             string
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Output, &e.Engine,
			&succeeded, &compressed, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning conversion row: %w", err)
		}
		e.Succeeded = succeeded != 0
		e.Compressed = compressed != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
