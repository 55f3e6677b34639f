package api

import (
	"github.com/starford/berkano/internal/contentservice"
	"github.com/starford/berkano/internal/models"
)

// CreateDatabaseRequest is the request body for creating a database.
type CreateDatabaseRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// CopyDatabaseRequest is the request body for copying a database.
type CopyDatabaseRequest struct {
	Destination string `json:"destination"`
}

// SetActiveRequest is the request body for switching the active database.
type SetActiveRequest struct {
	Name string `json:"name"`
}

// CopyContentRequest is the request body for copying a content record.
type CopyContentRequest struct {
	NewID string `json:"new_id"`
}

// SaveContentResponse is returned after persisting a content record.
type SaveContentResponse struct {
	ID       string `json:"id"`
	Checksum string `json:"checksum"`
}

// DatabaseListResponse wraps database listings.
type DatabaseListResponse struct {
	Databases []models.DatabaseInfo `json:"databases"`
	Active    string                `json:"active"`
}

// ContentListResponse wraps content index listings.
type ContentListResponse struct {
	Content []contentservice.ContentListItem `json:"content"`
	Total   int                              `json:"total"`
}
