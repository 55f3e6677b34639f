// Package storage manages the database files under the storage root.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo describes one file under the storage root.
type FileInfo struct {
	Name      string
	SizeBytes int64
	ModTime   time.Time
}

// FS manages files inside a single root directory. All paths are file names
// relative to the root; anything that escapes it is rejected.
type FS struct {
	root string // absolute path to the storage root
}

// NewFS creates an FS rooted at the given directory, creating it if needed.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute storage root path.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a file name against the root and rejects any result
// that escapes it (directory traversal).
func (f *FS) safePath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: empty file name")
	}
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", name)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes storage root: %s", name)
	}
	return abs, nil
}

// List returns info for every file in the root matching the extension
// (e.g. ".db"). A missing root yields an empty list.
func (f *FS) List(ext string) ([]FileInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", e.Name(), err)
		}
		out = append(out, FileInfo{
			Name:      e.Name(),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	return out, nil
}

// Exists reports whether the named file exists under the root.
func (f *FS) Exists(name string) bool {
	abs, err := f.safePath(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Stat returns info for one file.
func (f *FS) Stat(name string) (FileInfo, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("storage: stat %s: %w", name, err)
	}
	return FileInfo{Name: name, SizeBytes: info.Size(), ModTime: info.ModTime()}, nil
}

// Abs resolves a file name to its absolute path under the root.
func (f *FS) Abs(name string) (string, error) {
	return f.safePath(name)
}

// Read returns the raw bytes of a file.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file, fsync, rename.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	return f.writeAbs(abs, content)
}

func (f *FS) writeAbs(abs string, content []byte) error {
	tmp, err := os.CreateTemp(f.root, ".berkano-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Copy duplicates src to dst byte-for-byte through a temp file, so dst
// either appears fully formed or not at all.
func (f *FS) Copy(src, dst string) error {
	absSrc, err := f.safePath(src)
	if err != nil {
		return err
	}
	absDst, err := f.safePath(dst)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(absSrc)
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", src, err)
	}
	return f.writeAbs(absDst, data)
}

// Delete removes a file along with any WAL sidecar files SQLite may have
// left next to it.
func (f *FS) Delete(name string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if rmErr := os.Remove(abs + suffix); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("storage: delete %s%s: %w", name, suffix, rmErr)
		}
	}
	return nil
}
