package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process Store backed by go-cache
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a MemoryStore. Expired items are purged every cleanupInterval.
func NewMemoryStore(defaultExpiration, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(defaultExpiration, cleanupInterval)}
}

// Get decodes the value stored under key into dest
func (s *MemoryStore) Get(_ context.Context, key string, dest any) error {
	val, found := s.cache.Get(key)
	if !found {
		return ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

// Set stores value under key for ttl
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	s.cache.Set(key, data, ttl)
	return nil
}

// Len returns the number of cached items, expired ones included until cleanup
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
