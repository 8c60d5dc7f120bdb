package tablestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrObjectNotFound is returned by Get for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is a flat key/value blob store. Keys use "/" separators.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every key under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	// URI returns a printable location for key.
	URI(key string) string
}

// FSObjectStore keeps objects as files below a root directory.
type FSObjectStore struct {
	root string
}

// NewFSObjectStore returns a store rooted at dir, creating it if needed.
func NewFSObjectStore(dir string) (*FSObjectStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("table root is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating table root %s: %w", dir, err)
	}
	return &FSObjectStore{root: dir}, nil
}

func (s *FSObjectStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimLeft(key, "/")))
}

func (s *FSObjectStore) Put(_ context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", key, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

func (s *FSObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (s *FSObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FSObjectStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *FSObjectStore) URI(key string) string {
	return "file://" + filepath.ToSlash(s.path(key))
}
