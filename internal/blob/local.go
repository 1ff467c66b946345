package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore is a Store that keeps each key as a file under a directory.
// Useful for offline use of the CLI tools without cloud credentials.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewLocalStore: create dir %q: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get implements the Store interface.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("local get %q: %w", key, err)
	}
	return data, nil
}

// Put implements the Store interface.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("local put %q: %w", key, err)
	}
	return nil
}

// Delete implements the Store interface.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local delete %q: %w", key, err)
	}
	return nil
}

var _ Store = (*LocalStore)(nil)
