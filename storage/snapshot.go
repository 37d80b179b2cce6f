package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

// FileSnapshotStore keeps each checkpoint as a JSON file at an explicitly
// configured path.
type FileSnapshotStore struct {
	paths map[string]string
}

// NewFileSnapshotStore creates a store for the given name -> path mapping.
func NewFileSnapshotStore(paths map[string]string) *FileSnapshotStore {
	p := make(map[string]string, len(paths))
	for name, path := range paths {
		p[name] = path
	}
	return &FileSnapshotStore{paths: p}
}

func (s *FileSnapshotStore) path(name string) (string, error) {
	path, ok := s.paths[name]
	if !ok || path == "" {
		return "", fmt.Errorf("snapshot: no path configured for %q", name)
	}
	return path, nil
}

// Load implements SnapshotStore.
func (s *FileSnapshotStore) Load(name string, v any) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &models.SnapshotError{Name: name, Err: err}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, &models.SnapshotError{Name: name, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return true, nil
}

// Save implements SnapshotStore.
func (s *FileSnapshotStore) Save(name string, v any) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return &models.SnapshotError{Name: name, Err: fmt.Errorf("encode: %w", err)}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &models.SnapshotError{Name: name, Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &models.SnapshotError{Name: name, Err: err}
	}
	return nil
}
