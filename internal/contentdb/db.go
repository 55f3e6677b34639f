// Package contentdb implements one content database: a single SQLite file
// holding stored markdown documents and the content index that maps stable
// content identifiers to their storage keys.
package contentdb

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
	storage_key TEXT PRIMARY KEY,
	markdown    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS content_index (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	content_id    TEXT NOT NULL UNIQUE,
	storage_key   TEXT NOT NULL UNIQUE,
	slug          TEXT NOT NULL DEFAULT '',
	last_modified DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_content_index_slug ON content_index(slug);
`

// DB wraps a sql.DB with content-database operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the SQLite database file and applies the schema.
// WAL journaling keeps readers unblocked during writes and makes committed
// data crash-safe.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("contentdb: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("contentdb: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("contentdb: apply schema: %w", err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// InitMeta records the display name and creation time of a fresh database.
func (db *DB) InitMeta(displayName string, createdAt time.Time) error {
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO meta (key, value) VALUES
			('display_name', ?),
			('created_at', ?)
	`, displayName, createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("contentdb: init meta: %w", err)
	}
	return nil
}

// Meta returns the database's display name and creation time. Missing meta
// rows (e.g. a file created out-of-band) yield zero values, not an error.
func (db *DB) Meta() (displayName string, createdAt time.Time, err error) {
	rows, err := db.conn.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("contentdb: read meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return "", time.Time{}, err
		}
		switch k {
		case "display_name":
			displayName = v
		case "created_at":
			createdAt, _ = time.Parse(time.RFC3339, v)
		}
	}
	return displayName, createdAt, rows.Err()
}

// Checkpoint flushes the write-ahead log into the main database file so the
// file can be copied byte-for-byte.
func (db *DB) Checkpoint() error {
	if _, err := db.conn.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("contentdb: checkpoint: %w", err)
	}
	return nil
}
