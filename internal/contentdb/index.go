package contentdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/berkano/internal/apperr"
	"github.com/starford/berkano/internal/models"
)

// StorageKey derives the canonical storage key for a content identifier.
func StorageKey(contentID string) string {
	return "content/" + contentID + ".md"
}

// Add creates an index entry plus its (empty) content row in one
// transaction. Fails with apperr.ErrAlreadyExists when the id is taken.
func (db *DB) Add(contentID, storageKey string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("contentdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var existing string
	err = tx.QueryRow(`SELECT content_id FROM content_index WHERE content_id = ?`, contentID).Scan(&existing)
	if err == nil {
		return fmt.Errorf("contentdb: add %s: %w", contentID, apperr.ErrAlreadyExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("contentdb: add lookup: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO content (storage_key) VALUES (?)`, storageKey); err != nil {
		return fmt.Errorf("contentdb: insert content row: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO content_index (content_id, storage_key, last_modified)
		VALUES (?, ?, ?)
	`, contentID, storageKey, time.Now().UTC()); err != nil {
		return fmt.Errorf("contentdb: insert index entry: %w", err)
	}
	return tx.Commit()
}

// Get returns the index entry for a content id.
func (db *DB) Get(contentID string) (*models.IndexEntry, error) {
	var e models.IndexEntry
	err := db.conn.QueryRow(`
		SELECT content_id, storage_key, last_modified
		FROM content_index WHERE content_id = ?
	`, contentID).Scan(&e.ContentID, &e.StorageKey, &e.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contentdb: get %s: %w", contentID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("contentdb: get %s: %w", contentID, err)
	}
	return &e, nil
}

// All returns every index entry in insertion order.
func (db *DB) All() ([]models.IndexEntry, error) {
	rows, err := db.conn.Query(`
		SELECT content_id, storage_key, last_modified
		FROM content_index ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("contentdb: all entries: %w", err)
	}
	defer rows.Close()

	var out []models.IndexEntry
	for rows.Next() {
		var e models.IndexEntry
		if err := rows.Scan(&e.ContentID, &e.StorageKey, &e.LastModified); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the index entry and its stored document in one transaction.
func (db *DB) Delete(contentID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("contentdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var storageKey string
	err = tx.QueryRow(`SELECT storage_key FROM content_index WHERE content_id = ?`, contentID).Scan(&storageKey)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("contentdb: delete %s: %w", contentID, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("contentdb: delete lookup: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM content WHERE storage_key = ?`, storageKey); err != nil {
		return fmt.Errorf("contentdb: delete content row: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM content_index WHERE content_id = ?`, contentID); err != nil {
		return fmt.Errorf("contentdb: delete index entry: %w", err)
	}
	return tx.Commit()
}

// Copy duplicates the stored document under a new identifier with a fresh
// index entry, leaving the source untouched. One transaction covers both
// the content row and the index entry.
func (db *DB) Copy(oldID, newID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("contentdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var srcKey, slug string
	err = tx.QueryRow(`SELECT storage_key, slug FROM content_index WHERE content_id = ?`, oldID).Scan(&srcKey, &slug)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("contentdb: copy source %s: %w", oldID, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("contentdb: copy lookup: %w", err)
	}

	var taken string
	err = tx.QueryRow(`SELECT content_id FROM content_index WHERE content_id = ?`, newID).Scan(&taken)
	if err == nil {
		return fmt.Errorf("contentdb: copy destination %s: %w", newID, apperr.ErrAlreadyExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("contentdb: copy destination lookup: %w", err)
	}

	dstKey := StorageKey(newID)
	if _, err := tx.Exec(`
		INSERT INTO content (storage_key, markdown)
		SELECT ?, markdown FROM content WHERE storage_key = ?
	`, dstKey, srcKey); err != nil {
		return fmt.Errorf("contentdb: copy content row: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO content_index (content_id, storage_key, slug, last_modified)
		VALUES (?, ?, ?, ?)
	`, newID, dstKey, slug, time.Now().UTC()); err != nil {
		return fmt.Errorf("contentdb: copy index entry: %w", err)
	}
	return tx.Commit()
}

// Read returns the stored markdown for a content id.
func (db *DB) Read(contentID string) (string, error) {
	var markdown string
	err := db.conn.QueryRow(`
		SELECT c.markdown
		FROM content_index i JOIN content c ON c.storage_key = i.storage_key
		WHERE i.content_id = ?
	`, contentID).Scan(&markdown)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("contentdb: read %s: %w", contentID, apperr.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("contentdb: read %s: %w", contentID, err)
	}
	return markdown, nil
}

// Write persists a document, creating the index entry when the content id is
// new. The content row and the index entry move in one transaction so the
// index and storage stay in lockstep.
func (db *DB) Write(contentID, slug, markdown string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("contentdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	storageKey := StorageKey(contentID)
	var existingKey string
	err = tx.QueryRow(`SELECT storage_key FROM content_index WHERE content_id = ?`, contentID).Scan(&existingKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`
			INSERT INTO content_index (content_id, storage_key, slug, last_modified)
			VALUES (?, ?, ?, ?)
		`, contentID, storageKey, slug, time.Now().UTC()); err != nil {
			return fmt.Errorf("contentdb: write index entry: %w", err)
		}
	case err != nil:
		return fmt.Errorf("contentdb: write lookup: %w", err)
	default:
		storageKey = existingKey
		if _, err := tx.Exec(`
			UPDATE content_index SET slug = ?, last_modified = ? WHERE content_id = ?
		`, slug, time.Now().UTC(), contentID); err != nil {
			return fmt.Errorf("contentdb: touch index entry: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO content (storage_key, markdown) VALUES (?, ?)
		ON CONFLICT(storage_key) DO UPDATE SET markdown = excluded.markdown
	`, storageKey, markdown); err != nil {
		return fmt.Errorf("contentdb: write content row: %w", err)
	}
	return tx.Commit()
}

// SlugInUse reports whether another content record already claims slug.
func (db *DB) SlugInUse(slug, excludeID string) (bool, error) {
	var id string
	err := db.conn.QueryRow(`
		SELECT content_id FROM content_index WHERE slug = ? AND content_id != ? LIMIT 1
	`, slug, excludeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("contentdb: slug lookup: %w", err)
	}
	return true, nil
}

// Stats returns the entry count and the most recent modification time.
func (db *DB) Stats() (count int, lastModified time.Time, err error) {
	err = db.conn.QueryRow(`SELECT COUNT(*) FROM content_index`).Scan(&count)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("contentdb: stats count: %w", err)
	}
	if count == 0 {
		return 0, time.Time{}, nil
	}
	// MAX(last_modified) is an expression column without the DATETIME
	// decltype, so the driver would scan it as a string. Selecting the
	// column directly keeps the time.Time conversion.
	err = db.conn.QueryRow(`
		SELECT last_modified FROM content_index ORDER BY last_modified DESC LIMIT 1
	`).Scan(&lastModified)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("contentdb: stats latest: %w", err)
	}
	return count, lastModified, nil
}
