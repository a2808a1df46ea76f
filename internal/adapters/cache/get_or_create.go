package cache

import (
	"context"
	"fmt"

	"github.com/anki0476/rigveda-explorer/internal/logging"
)

// GetOrCreate returns the cached value for key, creating it with create on a miss.
// Concurrent callers for the same key share a single create call.
// Returns data, created, error
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, bool, error) {
	// Clean up the cache if we claim an entry, but don't set it
	// This allows other callers to try again
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true

			logging.FromContext(ctx).DebugContext(ctx, "Creating cache entry", "cache", "miss")

			data, err := create()
			if err != nil {
				var empty T
				return empty, false, fmt.Errorf("failed to create cache entry: %w", err)
			}

			cache.set(key, data)
			set = true

			return data, true, nil
		}

		if result.valid {
			logging.FromContext(ctx).DebugContext(ctx, "Using cache entry", "cache", "hit")
			return result.data, false, nil
		}

		select {
		case <-ctx.Done():
			var empty T
			return empty, false, fmt.Errorf("waiting for cache entry: %w", ctx.Err())
		default:
		}

		cache.wait()
	}
}

// Delete removes the entry for key, if any
func Delete[T any](cache Cache[T], key string) {
	cache.delete(key)
}
