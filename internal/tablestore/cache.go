package tablestore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedObjectStore keeps recently read objects in memory. Writes and
// deletes through the cache invalidate the affected key.
type CachedObjectStore struct {
	ObjectStore
	cache *lru.Cache[string, []byte]
}

// NewCachedObjectStore wraps inner with an LRU cache holding up to size objects.
func NewCachedObjectStore(inner ObjectStore, size int) (*CachedObjectStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("creating object cache: %w", err)
	}
	return &CachedObjectStore{ObjectStore: inner, cache: cache}, nil
}

func (s *CachedObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}
	data, err := s.ObjectStore.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, data)
	return data, nil
}

func (s *CachedObjectStore) Put(ctx context.Context, key string, data []byte) error {
	s.cache.Remove(key)
	return s.ObjectStore.Put(ctx, key, data)
}

func (s *CachedObjectStore) Delete(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return s.ObjectStore.Delete(ctx, key)
}

// Len returns the number of cached objects.
func (s *CachedObjectStore) Len() int {
	return s.cache.Len()
}
