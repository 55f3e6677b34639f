package contentdb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/berkano/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM meta`).Scan(&count); err != nil {
		t.Fatalf("meta table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM content`).Scan(&count); err != nil {
		t.Fatalf("content table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM content_index`).Scan(&count); err != nil {
		t.Fatalf("content_index table missing: %v", err)
	}
}

func TestStorageKey(t *testing.T) {
	if got := StorageKey("abc"); got != "content/abc.md" {
		t.Errorf("StorageKey = %q", got)
	}
}

func TestAddAndGet(t *testing.T) {
	db := testDB(t)
	if err := db.Add("c-1", StorageKey("c-1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	e, err := db.Get("c-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.ContentID != "c-1" || e.StorageKey != "content/c-1.md" {
		t.Errorf("entry = %+v", e)
	}
	if e.LastModified.IsZero() {
		t.Error("last modified not set")
	}
}

func TestAdd_Duplicate(t *testing.T) {
	db := testDB(t)
	if err := db.Add("c-1", StorageKey("c-1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := db.Add("c-1", StorageKey("c-1"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.Get("nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAll_InsertionOrder(t *testing.T) {
	db := testDB(t)
	ids := []string{"zulu", "alpha", "mike"}
	for _, id := range ids {
		if err := db.Add(id, StorageKey(id)); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}
	entries, err := db.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, id := range ids {
		if entries[i].ContentID != id {
			t.Errorf("entries[%d] = %s, want %s (insertion order)", i, entries[i].ContentID, id)
		}
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	if err := db.Write("c-1", "slug-1", "# Doc\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := db.Delete("c-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get("c-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("entry survived delete: %v", err)
	}
	var rows int
	if err := db.conn.QueryRow(`SELECT count(*) FROM content`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 0 {
		t.Errorf("content rows = %d, want 0", rows)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := testDB(t)
	if err := db.Delete("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWriteAndRead(t *testing.T) {
	db := testDB(t)
	if err := db.Write("c-1", "first", "# One\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := db.Read("c-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "# One\n" {
		t.Errorf("markdown = %q", got)
	}

	// Overwrite keeps a single entry.
	if err := db.Write("c-1", "first", "# Two\n"); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got, err = db.Read("c-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "# Two\n" {
		t.Errorf("markdown after rewrite = %q", got)
	}
	entries, err := db.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestCopy(t *testing.T) {
	db := testDB(t)
	if err := db.Write("src", "the-slug", "# Original\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := db.Copy("src", "dst"); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	srcDoc, err := db.Read("src")
	if err != nil {
		t.Fatalf("Read src: %v", err)
	}
	dstDoc, err := db.Read("dst")
	if err != nil {
		t.Fatalf("Read dst: %v", err)
	}
	if srcDoc != dstDoc {
		t.Errorf("copy differs: %q vs %q", srcDoc, dstDoc)
	}

	// Re-writing the copy must not touch the source.
	if err := db.Write("dst", "the-slug-copy", "# Changed\n"); err != nil {
		t.Fatalf("Write dst: %v", err)
	}
	srcDoc, err = db.Read("src")
	if err != nil {
		t.Fatal(err)
	}
	if srcDoc != "# Original\n" {
		t.Errorf("source mutated by copy edit: %q", srcDoc)
	}
}

func TestCopy_SourceMissing(t *testing.T) {
	db := testDB(t)
	if err := db.Copy("ghost", "dst"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCopy_DestinationTaken(t *testing.T) {
	db := testDB(t)
	if err := db.Write("a", "a", "A\n"); err != nil {
		t.Fatal(err)
	}
	if err := db.Write("b", "b", "B\n"); err != nil {
		t.Fatal(err)
	}
	if err := db.Copy("a", "b"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestSlugInUse(t *testing.T) {
	db := testDB(t)
	if err := db.Write("c-1", "taken", "X\n"); err != nil {
		t.Fatal(err)
	}
	used, err := db.SlugInUse("taken", "other")
	if err != nil {
		t.Fatal(err)
	}
	if !used {
		t.Error("slug should be reported in use")
	}
	// The owner itself is excluded.
	used, err = db.SlugInUse("taken", "c-1")
	if err != nil {
		t.Fatal(err)
	}
	if used {
		t.Error("owner should not conflict with its own slug")
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	count, last, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if count != 0 || !last.IsZero() {
		t.Errorf("empty stats = %d, %v", count, last)
	}

	if err := db.Write("c-1", "one", "X\n"); err != nil {
		t.Fatal(err)
	}
	count, last, err = db.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 || last.IsZero() {
		t.Errorf("stats = %d, %v", count, last)
	}

	if err := db.Write("c-2", "two", "Y\n"); err != nil {
		t.Fatal(err)
	}
	count, later, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats after second write: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if later.Before(last) {
		t.Errorf("last modified went backwards: %v -> %v", last, later)
	}
}

func TestMeta(t *testing.T) {
	db := testDB(t)
	created := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if err := db.InitMeta("My Database", created); err != nil {
		t.Fatalf("InitMeta: %v", err)
	}
	display, got, err := db.Meta()
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if display != "My Database" {
		t.Errorf("display = %q", display)
	}
	if !got.Equal(created) {
		t.Errorf("created = %v, want %v", got, created)
	}

	// InitMeta is first-write-wins.
	if err := db.InitMeta("Other", created.AddDate(4, 0, 0)); err != nil {
		t.Fatal(err)
	}
	display, _, err = db.Meta()
	if err != nil {
		t.Fatal(err)
	}
	if display != "My Database" {
		t.Errorf("display overwritten: %q", display)
	}
}
