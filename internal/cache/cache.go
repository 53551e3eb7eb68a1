package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is a TTL byte store. The in-memory implementation is the default; a
// Redis-backed one can be swapped in without changing callers.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache collapses concurrent misses for the same key into a single compute
// via singleflight and stores results with a TTL. Compute failures are never
// cached: every waiter of the failed flight gets the error and the next call
// starts fresh.
type Cache struct {
	store Store
	group singleflight.Group
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

// Key builds a deterministic cache key from the logical request parameters.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// GetOrCompute returns the cached value for key, or runs compute exactly once
// across all concurrent callers of the same key and caches its result for ttl.
// Store failures degrade to a plain compute rather than erroring the request.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	result, err, _ := c.group.Do(key, func() (any, error) {
		data, ok, err := c.store.Get(ctx, key)
		if err != nil {
			log.Printf("cache get %s: %v", key, err)
		} else if ok {
			var cached T
			if err := json.Unmarshal(data, &cached); err != nil {
				log.Printf("cache decode %s: %v", key, err)
			} else {
				return cached, nil
			}
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(value); err == nil {
			if err := c.store.Set(ctx, key, data, ttl); err != nil {
				log.Printf("cache set %s: %v", key, err)
			}
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
