package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes documents under a directory of the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put writes data to dir/name, creating parent directories as needed.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Backend returns "local".
func (s *LocalStore) Backend() string {
	return "local"
}

var _ Store = (*LocalStore)(nil)
