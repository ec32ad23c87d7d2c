package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis helpers for JSON payloads. A nil cache or nil client is a
// no-op, so callers can skip wiring Redis in tests.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a cache helper.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
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
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate removes keys from the cache.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// KeyTripList builds the cache key for a trip listing query.
func KeyTripList(destination, query string, limit, offset int) string {
	return "bkg:trips:" + destination + ":" + query + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}

// KeyTrip builds the cache key for a trip detail page.
func KeyTrip(slug string) string {
	return "bkg:trip:" + slug
}

// KeyRewardPhases is the cache key for the active reward phase set.
const KeyRewardPhases = "bkg:rewards:phases"
