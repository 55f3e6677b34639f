// Package registry manages the set of database files under the storage root
// and the process-wide active-database pointer.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/berkano/internal/apperr"
	"github.com/starford/berkano/internal/contentdb"
	"github.com/starford/berkano/internal/models"
	"github.com/starford/berkano/internal/storage"
	"github.com/starford/berkano/internal/validate"
)

const (
	dbExt            = ".db"
	activeConfigFile = "active.yaml"
)

// activeConfig is the persisted active-database record.
type activeConfig struct {
	ActiveDatabase string `yaml:"active_database"`
}

// Registry tracks database files and which one is active. The active pointer
// is re-resolved from its config record on every call so a SetActive from
// one request is immediately visible to the next; instances are injectable
// so tests run in isolation.
type Registry struct {
	fs          *storage.FS
	defaultName string

	mu sync.Mutex // serializes config writes and file-level mutations
}

// New creates a Registry rooted at dir, creating the directory on demand.
// defaultName is the fallback database when no active config exists.
func New(dir, defaultName string) (*Registry, error) {
	if defaultName == "" {
		defaultName = "content.db"
	}
	if err := validate.ValidateDatabaseName(defaultName); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return &Registry{fs: fs, defaultName: defaultName}, nil
}

// Root returns the absolute storage root.
func (r *Registry) Root() string {
	return r.fs.Root()
}

// List enumerates all database files under the storage root. It never fails
// on a missing root and skips files that cannot be opened as databases.
func (r *Registry) List() ([]models.DatabaseInfo, error) {
	files, err := r.fs.List(dbExt)
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	out := make([]models.DatabaseInfo, 0, len(files))
	for _, fi := range files {
		info, err := r.info(fi)
		if err != nil {
			slog.Warn("registry: skipping unreadable database",
				slog.String("name", fi.Name), slog.String("error", err.Error()))
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func (r *Registry) info(fi storage.FileInfo) (models.DatabaseInfo, error) {
	db, err := r.open(fi.Name)
	if err != nil {
		return models.DatabaseInfo{}, err
	}
	defer db.Close()

	displayName, createdAt, err := db.Meta()
	if err != nil {
		return models.DatabaseInfo{}, err
	}
	count, _, err := db.Stats()
	if err != nil {
		return models.DatabaseInfo{}, err
	}
	if displayName == "" {
		displayName = strings.TrimSuffix(fi.Name, dbExt)
	}
	return models.DatabaseInfo{
		Name:         fi.Name,
		DisplayName:  displayName,
		CreatedAt:    createdAt,
		SizeBytes:    fi.SizeBytes,
		ContentCount: count,
	}, nil
}

// ActiveName resolves the active-database config record. A missing record
// falls back to the default name; an unparseable one is logged as corrupt
// and falls back rather than aborting.
func (r *Registry) ActiveName() string {
	data, err := r.fs.Read(activeConfigFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("registry: active config unreadable, using default",
				slog.String("default", r.defaultName), slog.String("error", err.Error()))
		}
		return r.defaultName
	}
	var cfg activeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil || cfg.ActiveDatabase == "" {
		slog.Warn("registry: active config corrupt, using default",
			slog.String("default", r.defaultName),
			slog.String("error", fmt.Errorf("%w: %v", apperr.ErrConfigCorrupt, err).Error()))
		return r.defaultName
	}
	return cfg.ActiveDatabase
}

// Active resolves the active database, creating the default one on first use.
func (r *Registry) Active() (models.DatabaseInfo, error) {
	name := r.ActiveName()
	if !r.fs.Exists(name) {
		if _, err := r.Create(name, strings.TrimSuffix(name, dbExt)); err != nil {
			return models.DatabaseInfo{}, err
		}
	}
	fi, err := r.fs.Stat(name)
	if err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: active: %w", err)
	}
	return r.info(fi)
}

// SetActive atomically rewrites the active-database record. Fails with
// apperr.ErrNotFound when no such database file exists.
func (r *Registry) SetActive(name string) error {
	if err := validate.ValidateDatabaseName(name); err != nil {
		return fmt.Errorf("registry: set active: %w: %v", apperr.ErrValidation, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.fs.Exists(name) {
		return fmt.Errorf("registry: set active %s: %w", name, apperr.ErrNotFound)
	}
	data, err := yaml.Marshal(activeConfig{ActiveDatabase: name})
	if err != nil {
		return fmt.Errorf("registry: marshal active config: %w", err)
	}
	if err := r.fs.Write(activeConfigFile, data); err != nil {
		return fmt.Errorf("registry: write active config: %w", err)
	}
	return nil
}

// Create initializes a new, empty database with the expected schema.
func (r *Registry) Create(name, displayName string) (models.DatabaseInfo, error) {
	if err := validate.ValidateDatabaseName(name); err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: create: %w: %v", apperr.ErrValidation, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fs.Exists(name) {
		return models.DatabaseInfo{}, fmt.Errorf("registry: create %s: %w", name, apperr.ErrAlreadyExists)
	}
	db, err := r.open(name)
	if err != nil {
		return models.DatabaseInfo{}, err
	}
	if displayName == "" {
		displayName = strings.TrimSuffix(name, dbExt)
	}
	if err := db.InitMeta(displayName, time.Now()); err != nil {
		db.Close()
		return models.DatabaseInfo{}, err
	}
	if err := db.Close(); err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: create %s: %w", name, err)
	}

	fi, err := r.fs.Stat(name)
	if err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: create %s: %w", name, err)
	}
	return r.info(fi)
}

// Copy duplicates a database byte-for-byte under a new name, content index
// included. The source is checkpointed first so the copy sees all committed
// writes; the destination appears fully formed or not at all.
func (r *Registry) Copy(srcName, dstName string) (models.DatabaseInfo, error) {
	if err := validate.ValidateDatabaseName(dstName); err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: copy: %w: %v", apperr.ErrValidation, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.fs.Exists(srcName) {
		return models.DatabaseInfo{}, fmt.Errorf("registry: copy source %s: %w", srcName, apperr.ErrNotFound)
	}
	if r.fs.Exists(dstName) {
		return models.DatabaseInfo{}, fmt.Errorf("registry: copy destination %s: %w", dstName, apperr.ErrAlreadyExists)
	}

	src, err := r.open(srcName)
	if err != nil {
		return models.DatabaseInfo{}, err
	}
	checkpointErr := src.Checkpoint()
	if closeErr := src.Close(); checkpointErr == nil {
		checkpointErr = closeErr
	}
	if checkpointErr != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: copy %s: %w", srcName, checkpointErr)
	}

	if err := r.fs.Copy(srcName, dstName); err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: copy %s to %s: %w", srcName, dstName, err)
	}
	fi, err := r.fs.Stat(dstName)
	if err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: copy %s: %w", dstName, err)
	}
	return r.info(fi)
}

// Import writes an uploaded database file under a new name. The payload must
// open as a content database; garbage uploads are rejected and removed.
func (r *Registry) Import(name string, data []byte) (models.DatabaseInfo, error) {
	if err := validate.ValidateDatabaseName(name); err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: import: %w: %v", apperr.ErrValidation, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fs.Exists(name) {
		return models.DatabaseInfo{}, fmt.Errorf("registry: import %s: %w", name, apperr.ErrAlreadyExists)
	}
	if err := r.fs.Write(name, data); err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: import %s: %w", name, err)
	}

	fi, err := r.fs.Stat(name)
	if err != nil {
		return models.DatabaseInfo{}, fmt.Errorf("registry: import %s: %w", name, err)
	}
	info, err := r.info(fi)
	if err != nil {
		_ = r.fs.Delete(name)
		return models.DatabaseInfo{}, fmt.Errorf("registry: import %s: %w: not a content database", name, apperr.ErrValidation)
	}
	return info, nil
}

// Delete removes a database file. The active database is refused.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == r.ActiveName() {
		return fmt.Errorf("registry: delete %s: %w", name, apperr.ErrIsActive)
	}
	if !r.fs.Exists(name) {
		return fmt.Errorf("registry: delete %s: %w", name, apperr.ErrNotFound)
	}
	if err := r.fs.Delete(name); err != nil {
		return fmt.Errorf("registry: delete %s: %w", name, err)
	}
	return nil
}

// Stats returns size, content count, and last-modified for one database.
func (r *Registry) Stats(name string) (models.DatabaseStats, error) {
	if !r.fs.Exists(name) {
		return models.DatabaseStats{}, fmt.Errorf("registry: stats %s: %w", name, apperr.ErrNotFound)
	}
	fi, err := r.fs.Stat(name)
	if err != nil {
		return models.DatabaseStats{}, fmt.Errorf("registry: stats %s: %w", name, err)
	}
	db, err := r.open(name)
	if err != nil {
		return models.DatabaseStats{}, err
	}
	defer db.Close()

	count, lastModified, err := db.Stats()
	if err != nil {
		return models.DatabaseStats{}, err
	}
	if lastModified.IsZero() {
		lastModified = fi.ModTime
	}
	return models.DatabaseStats{
		Name:         name,
		SizeBytes:    fi.SizeBytes,
		ContentCount: count,
		LastModified: lastModified,
	}, nil
}

// Open opens an existing database by name.
func (r *Registry) Open(name string) (*contentdb.DB, error) {
	if !r.fs.Exists(name) {
		return nil, fmt.Errorf("registry: open %s: %w", name, apperr.ErrNotFound)
	}
	return r.open(name)
}

// OpenActive re-resolves the active pointer and opens that database,
// creating the default database on first use.
func (r *Registry) OpenActive() (*contentdb.DB, error) {
	name := r.ActiveName()
	if !r.fs.Exists(name) {
		if _, err := r.Create(name, strings.TrimSuffix(name, dbExt)); err != nil {
			return nil, err
		}
	}
	return r.open(name)
}

// open opens by name without an existence check (creates the file).
func (r *Registry) open(name string) (*contentdb.DB, error) {
	abs, err := r.fs.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return contentdb.Open(abs)
}
