// Package store provides HandleStore implementations: a durable
// file-backed store, an in-memory store, and a fallback chain that
// keeps writes in memory when the durable backend fails.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const handleFileName = "session-handle"

// FileStore persists the resumption handle in a file. Writes are
// atomic (temp file + rename) so a crash never leaves a torn handle.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. An empty path selects
// a file under the user config directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "livewire", handleFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get reads the stored handle. A missing or unreadable file means no
// handle.
func (s *FileStore) Get() (string, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	h := strings.TrimSpace(string(b))
	return h, h != ""
}

// Set writes the handle atomically. An empty handle removes the file.
func (s *FileStore) Set(handle string) error {
	if handle == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove handle file: %w", err)
		}
		return nil
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(handle), 0o600); err != nil {
		return fmt.Errorf("write handle file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename handle file: %w", err)
	}
	return nil
}
