// Package cache stores fetched pages and resolved domains between runs.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contactscraper/config"
)

// ErrCacheMiss is returned when a key is not found in the cache.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is a JSON value store with per-key expiry
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// New builds the store selected by cfg.Type. The "none" type yields a nil Store,
// which Memoize and every caller treat as caching disabled.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Type {
	case "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(cfg.TTL, cfg.CleanupInterval), nil
	case "redis":
		store, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// Memoize returns the cached value for key or calls fn and caches its result for ttl.
func Memoize[T any](ctx context.Context, store Store, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	return MemoizeTTL(ctx, store, key, func(T) time.Duration { return ttl }, fn)
}

// MemoizeTTL is Memoize with a TTL chosen from the computed value. A zero TTL skips the write.
func MemoizeTTL[T any](ctx context.Context, store Store, key string, ttlFor func(T) time.Duration, fn func() (T, error)) (T, error) {
	var result T
	if store == nil {
		return fn()
	}

	// Try fetching from cache
	if err := store.Get(ctx, key, &result); err == nil {
		return result, nil
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	if ttl := ttlFor(result); ttl > 0 {
		// a failed write only costs a recomputation later
		_ = store.Set(ctx, key, result, ttl)
	}
	return result, nil
}
