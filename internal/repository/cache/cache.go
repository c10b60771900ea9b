// Package cache implements the cache port over a key-value store. A port
// instance is bound to one entity type and one TTL at construction. The
// cache never originates data: entries are time-bounded copies of storage
// results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cinedex-cloud/cinedex/internal/db"
)

// kv is the consumer interface for the cache connection (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is a typed cache port. A miss is (nil, nil), never an error.
type Cache[T any] struct {
	store kv
	ttl   time.Duration
}

// New creates a cache port bound to one entity type and TTL.
func New[T any](store kv, ttl time.Duration) *Cache[T] {
	return &Cache[T]{store: store, ttl: ttl}
}

// TTL returns the configured entry lifetime.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the cached entity for key, or nil on a miss.
func (c *Cache[T]) Get(ctx context.Context, key string) (*T, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode cached value %s: %w", key, err)
	}
	return &v, nil
}

// Set stores the entity under key with the configured TTL. The TTL resets
// on every set.
func (c *Cache[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value %s: %w", key, err)
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// GetList returns the cached collection for key, or nil on a miss. A cached
// empty result comes back as a non-nil empty slice, so repeated zero-hit
// searches do not reach storage again.
func (c *Cache[T]) GetList(ctx context.Context, key string) ([]T, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cached list %s: %w", key, err)
	}
	return items, nil
}

// SetList stores a collection under key. An empty slice is a legitimate
// cacheable value and is stored as [].
func (c *Cache[T]) SetList(ctx context.Context, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode list %s: %w", key, err)
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Counter caches opaque integer aggregates (e.g. category popularity)
// under their own TTL, independent of any entity cache.
type Counter struct {
	store kv
	ttl   time.Duration
}

// NewCounter creates a scalar cache with its own TTL.
func NewCounter(store kv, ttl time.Duration) *Counter {
	return &Counter{store: store, ttl: ttl}
}

// Get returns the cached scalar and whether it was present.
func (c *Counter) Get(ctx context.Context, key string) (int64, bool, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decode cached scalar %s: %w", key, err)
	}
	return n, true, nil
}

// Set stores the scalar with the counter's TTL.
func (c *Counter) Set(ctx context.Context, key string, n int64) error {
	if err := c.store.SetWithTTL(ctx, key, []byte(strconv.FormatInt(n, 10)), c.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
