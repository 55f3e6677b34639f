// Package testutil provides shared test helpers for setting up storage
// roots, registries, and content databases.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/berkano/internal/contentdb"
	"github.com/starford/berkano/internal/registry"
)

// TestRegistry creates a registry over a temporary storage root that is
// automatically cleaned up.
func TestRegistry(t *testing.T) (string, *registry.Registry) {
	t.Helper()
	root := t.TempDir()
	reg, err := registry.New(root, "content.db")
	if err != nil {
		t.Fatal(err)
	}
	return root, reg
}

// TestDB creates a content database file in a temporary directory.
func TestDB(t *testing.T) *contentdb.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := contentdb.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
