// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists collected papers, topic mappings, generated labels,
// and pipeline run records in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DBFile is the database file name inside the data directory.
const DBFile = "research-trends.db"

// Store wraps the research-trends SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates dataDir/research-trends.db and ensures the schema
// exists.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT,
			date TEXT,
			citations INTEGER NOT NULL DEFAULT 0,
			theme TEXT,
			topic_id INTEGER NOT NULL DEFAULT -1,
			concepts TEXT,
			university TEXT,
			authors TEXT,
			journal TEXT,
			doi TEXT,
			type TEXT,
			source_type TEXT,
			relevance_score REAL,
			confidence_score REAL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_theme ON papers(theme)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_topic ON papers(topic_id)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			papers INTEGER NOT NULL DEFAULT 0,
			topics INTEGER NOT NULL DEFAULT 0,
			emerging INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS topic_mappings (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			topic_id INTEGER NOT NULL,
			theme TEXT NOT NULL,
			confidence REAL NOT NULL,
			sub_theme TEXT,
			sub_theme_confidence REAL,
			keywords TEXT,
			all_scores TEXT,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, topic_id)
		)`,
		`CREATE TABLE IF NOT EXISTS label_cache (
			key TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Stats summarises the stored rows.
type Stats struct {
	Papers int
	Runs   int
	Labels int
}

// Stats counts papers, runs, and cached labels.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM papers), (SELECT count(*) FROM runs), (SELECT count(*) FROM label_cache)`,
	).Scan(&st.Papers, &st.Runs, &st.Labels)
	if err != nil {
		return Stats{}, fmt.Errorf("counting rows: %w", err)
	}
	return st, nil
}

// timeLayout is a fixed-width RFC 3339 layout so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
