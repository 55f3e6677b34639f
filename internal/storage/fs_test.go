package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempFS(t)
	content := []byte("binary payload")
	if err := s.Write("file.db", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("file.db")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestExistsAndStat(t *testing.T) {
	s := tempFS(t)
	if s.Exists("missing.db") {
		t.Error("missing file reported as existing")
	}
	if err := s.Write("here.db", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("here.db") {
		t.Error("written file not reported as existing")
	}
	fi, err := s.Stat("here.db")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Name != "here.db" || fi.SizeBytes != 1 {
		t.Errorf("info = %+v", fi)
	}
}

func TestList_FiltersByExtension(t *testing.T) {
	s := tempFS(t)
	_ = s.Write("a.db", []byte("a"))
	_ = s.Write("b.db", []byte("b"))
	_ = s.Write("active.yaml", []byte("active_database: a.db"))

	items, err := s.List(".db")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
}

func TestCopy(t *testing.T) {
	s := tempFS(t)
	_ = s.Write("src.db", []byte("payload"))
	if err := s.Copy("src.db", "dst.db"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, err := s.Read("dst.db")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("copy content = %q", got)
	}
}

func TestDelete_RemovesSidecars(t *testing.T) {
	s := tempFS(t)
	_ = s.Write("del.db", []byte("main"))
	_ = s.Write("del.db-wal", []byte("wal"))
	_ = s.Write("del.db-shm", []byte("shm"))

	if err := s.Delete("del.db"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, name := range []string{"del.db", "del.db-wal", "del.db-shm"} {
		if s.Exists(name) {
			t.Errorf("%s survived delete", name)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempFS(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.db",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftoverTemp(t *testing.T) {
	s := tempFS(t)
	_ = s.Write("atomic.db", []byte("original"))
	if err := s.Write("atomic.db", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.db")
	if string(got) != "updated" {
		t.Errorf("content = %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".berkano-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_CreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "root")
	if _, err := NewFS(dir); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("root not created: %v", err)
	}
}
