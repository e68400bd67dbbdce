// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the crawl frontier and parsed recipes in a
// SQLite database. Pages move through the pipeline by status; recipes
// get an FTS5 mirror for term search.
//
// Build with -tags sqlite_fts5 (mage build/test does); the FTS5 module
// of mattn/go-sqlite3 is compiled in only behind that tag, and schema
// creation fails without it.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

const dbFile = "recipe-finder.db"

// Store manages the recipe-finder SQLite database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// NewStore opens or creates the database at cfg.DataDir/recipe-finder.db,
// creating the schema when missing.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, path: dbPath, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL UNIQUE,
			domain TEXT NOT NULL,
			content TEXT,
			schema TEXT,
			priority INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(status)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain)`,
		`CREATE TABLE IF NOT EXISTS recipes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_id INTEGER NOT NULL REFERENCES pages(id),
			title TEXT,
			description TEXT,
			date TEXT,
			keywords TEXT,
			authors TEXT,
			images TEXT,
			rating REAL,
			rating_count INTEGER,
			prep_seconds INTEGER,
			cook_seconds INTEGER,
			total_seconds INTEGER,
			servings TEXT,
			ingredients TEXT,
			instructions TEXT,
			calories REAL,
			carbohydrates REAL,
			cholesterol REAL,
			fat REAL,
			fiber REAL,
			protein REAL,
			saturated_fat REAL,
			sodium REAL,
			sugar REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_page_id ON recipes(page_id)`,
		`CREATE TABLE IF NOT EXISTS blacklist (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fragment TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at TEXT NOT NULL,
			pending_download INTEGER, downloading INTEGER, download_failed INTEGER,
			pending_extraction INTEGER, extracting INTEGER, extraction_failed INTEGER,
			pending_parsing INTEGER, parsing INTEGER, parsed_incomplete INTEGER,
			pending_following INTEGER, following INTEGER, followed INTEGER,
			follow_failed INTEGER,
			recipes INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='recipes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE recipes_fts USING fts5(title, description, keywords, ingredients, content=recipes, content_rowid=id)`,
			`CREATE TRIGGER recipes_ai AFTER INSERT ON recipes BEGIN
				INSERT INTO recipes_fts(rowid, title, description, keywords, ingredients)
				VALUES (new.id, new.title, new.description, new.keywords, new.ingredients);
			END`,
			`CREATE TRIGGER recipes_ad AFTER DELETE ON recipes BEGIN
				INSERT INTO recipes_fts(recipes_fts, rowid, title, description, keywords, ingredients)
				VALUES('delete', old.id, old.title, old.description, old.keywords, old.ingredients);
			END`,
			`CREATE TRIGGER recipes_au AFTER UPDATE ON recipes BEGIN
				INSERT INTO recipes_fts(recipes_fts, rowid, title, description, keywords, ingredients)
				VALUES('delete', old.id, old.title, old.description, old.keywords, old.ingredients);
				INSERT INTO recipes_fts(rowid, title, description, keywords, ingredients)
				VALUES (new.id, new.title, new.description, new.keywords, new.ingredients);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}
