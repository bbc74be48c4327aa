// Package cache provides the Redis JSON read-through cache used by the
// discount and tax stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	name    string
	breaker *resilience.Breaker
}

// New constructs a cache helper. name labels lookup metrics.
func New(client *redis.Client, name string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, name: name}
}

// WithBreaker routes lookups through b. While it is open reads report a miss
// and writes are dropped so callers fall back to the database.
func (c *Cache) WithBreaker(b *resilience.Breaker) *Cache {
	c.breaker = b
	return c
}

// TTL returns the expiry applied to stored entries.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	if !c.breaker.Allow() {
		obs.ObserveCacheLookup(c.name, "bypass")
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.breaker.Report(true)
			obs.ObserveCacheLookup(c.name, "miss")
			return false, nil
		}
		c.breaker.Report(false)
		obs.ObserveCacheLookup(c.name, "error")
		return false, err
	}
	c.breaker.Report(true)
	if err := json.Unmarshal(data, dst); err != nil {
		obs.ObserveCacheLookup(c.name, "error")
		return false, err
	}
	obs.ObserveCacheLookup(c.name, "hit")
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !c.breaker.Allow() {
		return nil
	}
	err = c.client.Set(ctx, key, data, c.ttl).Err()
	c.breaker.Report(err == nil)
	return err
}

// Delete removes the provided keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeleteMatching removes every key matching the glob pattern.
func (c *Cache) DeleteMatching(ctx context.Context, pattern string) error {
	if c == nil || c.client == nil || pattern == "" {
		return nil
	}
	var batch []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}
	return c.client.Del(ctx, batch...).Err()
}
