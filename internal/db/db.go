package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrGraphNotFound is returned when no graph is stored under an alias.
var ErrGraphNotFound = errors.New("graph not found")

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

const schema = `
CREATE TABLE IF NOT EXISTS graphs (
	alias      TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	authors    TEXT NOT NULL DEFAULT '[]',
	created    TEXT NOT NULL,
	visibility TEXT NOT NULL,
	license    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS vertices (
	graph_alias TEXT NOT NULL REFERENCES graphs(alias) ON DELETE CASCADE,
	id          TEXT NOT NULL,
	ordinal     INTEGER NOT NULL,
	title       TEXT NOT NULL,
	type        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	details     TEXT,
	image       TEXT,
	color       TEXT NOT NULL,
	members     TEXT NOT NULL DEFAULT '[]',
	x           REAL,
	y           REAL,
	PRIMARY KEY (graph_alias, id)
);
CREATE TABLE IF NOT EXISTS links (
	graph_alias TEXT NOT NULL REFERENCES graphs(alias) ON DELETE CASCADE,
	source_id   TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	ordinal     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_links_graph ON links(graph_alias, ordinal);
CREATE VIRTUAL TABLE IF NOT EXISTS vertices_fts USING fts5(
	graph_alias UNINDEXED,
	vertex_id UNINDEXED,
	title,
	description
);
`

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled and
// creates the graph tables if they are missing
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// PRAGMAs below are per connection.
	conn.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}
