// Package storage implements the relational metadata store for articles,
// authors, authorships, and categories on SQLite.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes; a single connection also
	// keeps the pragma below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL,
			published TEXT NOT NULL,
			pub_year INTEGER NOT NULL,
			doi TEXT,
			pdf_url TEXT
		);

		CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			affiliation TEXT,
			orcid TEXT
		);

		-- Signing positions are 1-based and unique per article.
		CREATE TABLE IF NOT EXISTS authorships (
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES authors(id),
			position INTEGER NOT NULL CHECK (position >= 1),
			PRIMARY KEY (article_id, position),
			UNIQUE (article_id, author_id)
		);

		CREATE TABLE IF NOT EXISTS categories (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT
		);

		CREATE TABLE IF NOT EXISTS article_categories (
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			code TEXT NOT NULL REFERENCES categories(code),
			position INTEGER NOT NULL,
			PRIMARY KEY (article_id, code)
		);

		CREATE INDEX IF NOT EXISTS idx_articles_year ON articles(pub_year);
		CREATE INDEX IF NOT EXISTS idx_article_categories_code ON article_categories(code);
		CREATE INDEX IF NOT EXISTS idx_authorships_author ON authorships(author_id);
	`

	_, err := db.Exec(schema)
	return err
}

// maxBatchIDs bounds how many ids get bound into one statement, staying
// well under SQLite's variable limit with headroom for other parameters.
// Larger batches are split and their results merged.
const maxBatchIDs = 8000

// idChunks splits an id list into batches of at most maxBatchIDs.
func idChunks(ids []string) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += maxBatchIDs {
		end := start + maxBatchIDs
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
