package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes objects to a directory served under /uploads
type LocalStore struct {
	dir     string
	baseURL string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates the directory if needed
func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir returns the directory holding the objects
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(ctx context.Context, name, contentType string, data []byte) (*Object, error) {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(name)))

	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return nil, storageFailure(err)
	}

	return &Object{Key: key, URL: s.baseURL + "/uploads/" + key}, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return storageFailure(fmt.Errorf("invalid object key %q", key))
	}

	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return storageFailure(err)
	}
	return nil
}
