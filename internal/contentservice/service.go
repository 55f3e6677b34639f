// Package contentservice coordinates the database registry, the content
// index, and the markdown mapper behind one call surface.
package contentservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/berkano/internal/apperr"
	"github.com/starford/berkano/internal/checksum"
	"github.com/starford/berkano/internal/contentdb"
	"github.com/starford/berkano/internal/mapper"
	"github.com/starford/berkano/internal/models"
	"github.com/starford/berkano/internal/registry"
	"github.com/starford/berkano/internal/validate"
)

// ContentListItem is a lightweight item in a list response.
type ContentListItem struct {
	ContentID    string    `json:"content_id"`
	StorageKey   string    `json:"storage_key"`
	LastModified time.Time `json:"last_modified"`
}

// ContentDetail is the full representation returned to callers: the
// structured record plus the checksum of its stored document.
type ContentDetail struct {
	*models.Content
	Checksum string `json:"checksum"`
}

// IndexStats summarises one database's content index.
type IndexStats struct {
	Count        int       `json:"count"`
	LastModified time.Time `json:"last_modified"`
}

// Service coordinates registry and per-database index operations. Database
// handles are opened per call; the active pointer is re-resolved every time.
type Service struct {
	reg *registry.Registry
}

// NewService creates a new content service.
func NewService(reg *registry.Registry) *Service {
	return &Service{reg: reg}
}

// Registry exposes the underlying registry for database-level operations.
func (s *Service) Registry() *registry.Registry {
	return s.reg
}

// openDB opens the named database, or the active one when dbName is empty.
func (s *Service) openDB(dbName string) (*contentdb.DB, error) {
	if dbName == "" {
		return s.reg.OpenActive()
	}
	return s.reg.Open(dbName)
}

// GetFullContent loads the stored markdown for a content id, parses its
// frontmatter, and materializes the block tree.
func (s *Service) GetFullContent(_ context.Context, dbName, contentID string) (*ContentDetail, error) {
	db, err := s.openDB(dbName)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	markdown, err := db.Read(contentID)
	if err != nil {
		return nil, err
	}
	return &ContentDetail{
		Content:  mapper.ParseDocument(contentID, []byte(markdown)),
		Checksum: checksum.Sum([]byte(markdown)),
	}, nil
}

// SaveFullContent validates the record, serializes it to a markdown document,
// and persists it through the content index, creating the index entry when
// the id is new. A non-empty ifMatch checksum enables optimistic concurrency.
func (s *Service) SaveFullContent(_ context.Context, dbName string, c *models.Content, ifMatch string) (string, error) {
	if c.ID == "" {
		return "", fmt.Errorf("contentservice: save: %w: id is required", apperr.ErrValidation)
	}
	if c.Status == "" {
		c.Status = models.StatusDraft
	}
	if c.Slug == "" {
		c.Slug = validate.NormalizeSlug(c.Title)
	}
	if err := validate.ValidateTitle(c.Title); err != nil {
		return "", fmt.Errorf("contentservice: save %s: %w: %v", c.ID, apperr.ErrValidation, err)
	}
	if reasons := validate.ValidateSlug(c.Slug); len(reasons) > 0 {
		return "", fmt.Errorf("contentservice: save %s: %w: %s", c.ID, apperr.ErrValidation, strings.Join(reasons, "; "))
	}
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("contentservice: save %s: %w: %v", c.ID, apperr.ErrValidation, err)
	}

	db, err := s.openDB(dbName)
	if err != nil {
		return "", err
	}
	defer db.Close()

	inUse, err := db.SlugInUse(c.Slug, c.ID)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", fmt.Errorf("contentservice: save %s: %w: slug %q is already in use", c.ID, apperr.ErrValidation, c.Slug)
	}

	if ifMatch != "" {
		existing, readErr := db.Read(c.ID)
		if readErr == nil && checksum.Sum([]byte(existing)) != ifMatch {
			return "", fmt.Errorf("contentservice: save %s: %w", c.ID, apperr.ErrConflict)
		}
	}

	doc, err := mapper.ComposeDocument(c)
	if err != nil {
		return "", err
	}
	if err := db.Write(c.ID, c.Slug, string(doc)); err != nil {
		return "", err
	}
	return checksum.Sum(doc), nil
}

// DeleteContent removes a record and its index entry.
func (s *Service) DeleteContent(_ context.Context, dbName, contentID string) error {
	db, err := s.openDB(dbName)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Delete(contentID)
}

// ListContent returns all index entries in insertion order.
func (s *Service) ListContent(_ context.Context, dbName string) ([]ContentListItem, error) {
	db, err := s.openDB(dbName)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entries, err := db.All()
	if err != nil {
		return nil, err
	}
	items := make([]ContentListItem, len(entries))
	for i, e := range entries {
		items[i] = ContentListItem{
			ContentID:    e.ContentID,
			StorageKey:   e.StorageKey,
			LastModified: e.LastModified,
		}
	}
	return items, nil
}

// CopyContent duplicates a record under a new identifier, source untouched.
func (s *Service) CopyContent(_ context.Context, dbName, oldID, newID string) error {
	if newID == "" {
		return fmt.Errorf("contentservice: copy: %w: new id is required", apperr.ErrValidation)
	}
	db, err := s.openDB(dbName)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Copy(oldID, newID)
}

// ContentStats computes markdown stats for one stored record.
func (s *Service) ContentStats(_ context.Context, dbName, contentID string) (models.MarkdownStats, error) {
	db, err := s.openDB(dbName)
	if err != nil {
		return models.MarkdownStats{}, err
	}
	defer db.Close()

	markdown, err := db.Read(contentID)
	if err != nil {
		return models.MarkdownStats{}, err
	}
	return mapper.Stats(markdown), nil
}

// IndexStats returns count and last-modified for one database's index.
func (s *Service) IndexStats(_ context.Context, dbName string) (IndexStats, error) {
	db, err := s.openDB(dbName)
	if err != nil {
		return IndexStats{}, err
	}
	defer db.Close()

	count, lastModified, err := db.Stats()
	if err != nil {
		return IndexStats{}, err
	}
	return IndexStats{Count: count, LastModified: lastModified}, nil
}
