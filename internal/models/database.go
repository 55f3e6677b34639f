package models

import "time"

// DatabaseInfo describes one database file under the storage root.
type DatabaseInfo struct {
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentCount int       `json:"content_count"`
}

// DatabaseStats is the lightweight stats view of a database.
type DatabaseStats struct {
	Name         string    `json:"name"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentCount int       `json:"content_count"`
	LastModified time.Time `json:"last_modified"`
}

// IndexEntry maps a stable content identifier to its storage location within
// one database.
type IndexEntry struct {
	ContentID    string    `json:"content_id"`
	StorageKey   string    `json:"storage_key"`
	LastModified time.Time `json:"last_modified"`
}
