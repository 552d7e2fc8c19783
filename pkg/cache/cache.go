// Package cache is a small JSON cache over Redis. A Cache without a Redis
// client is valid: reads miss, writes are dropped, and Remember still
// coalesces concurrent loads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/shashiranjanraj/vastra/pkg/metrics"
)

type Cache struct {
	rdb    *redis.Client
	prefix string
	group  singleflight.Group
}

// Connect dials Redis and verifies it with a ping.
func Connect(ctx context.Context, addr, password, prefix string) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(rdb, prefix), nil
}

// New wraps an existing client. rdb may be nil.
func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

// Client exposes the underlying Redis client for the queue driver and rate
// limiter. It is nil when Redis is not configured.
func (c *Cache) Client() *redis.Client { return c.rdb }

// Available reports whether a Redis client is attached.
func (c *Cache) Available() bool { return c.rdb != nil }

// Get unmarshals the value under key into dest. A miss is (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}

	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

// Set stores value as JSON for ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Has reports whether key exists.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}
	n, err := c.rdb.Exists(ctx, c.prefix+key).Result()
	return n > 0, err
}

// Forget removes keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if c.rdb == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.rdb.Del(ctx, full...).Err()
}

// Remember returns the cached value under key, or runs load once for all
// concurrent callers, caches its result for ttl and returns it. Cache errors
// fall through to load.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if ok, err := c.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		fresh, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, fresh, ttl)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
