package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type ttlCacheEntry[T any] struct {
	data  T
	valid bool
}

type ttlCache[T any] struct {
	cache *ttlcache.Cache[string, ttlCacheEntry[T]]
}

func (c *ttlCache[T]) getOrClaim(key string) hitResult[T] {
	invalid := ttlCacheEntry[T]{valid: false}
	item, existed := c.cache.GetOrSet(key, invalid)

	return hitResult[T]{
		data:    item.Value().data,
		valid:   item.Value().valid,
		claimed: !existed,
	}
}

func (c *ttlCache[T]) set(key string, data T) {
	c.cache.Set(key, ttlCacheEntry[T]{data: data, valid: true}, ttlcache.DefaultTTL)
}

func (c *ttlCache[T]) delete(key string) {
	c.cache.Delete(key)
}

func (c *ttlCache[T]) wait() {
	time.Sleep(50 * time.Millisecond)
}

// Stop halts the background expiry loop
func (c *ttlCache[T]) Stop() {
	c.cache.Stop()
}

type ttlOptions[T any] struct {
	touchOnHit bool
	onEvict    func(key string, data T)
}

type TTLOption[T any] func(*ttlOptions[T])

// WithTouchOnHit extends an entry's lifetime every time it is read, so entries expire after
// being idle rather than after a fixed lifetime
func WithTouchOnHit[T any]() TTLOption[T] {
	return func(o *ttlOptions[T]) {
		o.touchOnHit = true
	}
}

// WithEvictionCallback is called for every valid entry leaving the cache, whether it expired
// or was deleted
func WithEvictionCallback[T any](onEvict func(key string, data T)) TTLOption[T] {
	return func(o *ttlOptions[T]) {
		o.onEvict = onEvict
	}
}

func NewTTLCache[T any](ttl time.Duration, opts ...TTLOption[T]) *ttlCache[T] {
	options := ttlOptions[T]{}
	for _, opt := range opts {
		opt(&options)
	}

	cacheOptions := []ttlcache.Option[string, ttlCacheEntry[T]]{
		ttlcache.WithTTL[string, ttlCacheEntry[T]](ttl),
	}
	if !options.touchOnHit {
		cacheOptions = append(cacheOptions, ttlcache.WithDisableTouchOnHit[string, ttlCacheEntry[T]]())
	}

	inner := ttlcache.New[string, ttlCacheEntry[T]](cacheOptions...)

	if options.onEvict != nil {
		inner.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[string, ttlCacheEntry[T]]) {
			// Claimed entries that were never set carry no data
			if !item.Value().valid {
				return
			}
			options.onEvict(item.Key(), item.Value().data)
		})
	}

	go inner.Start()
	return &ttlCache[T]{cache: inner}
}
