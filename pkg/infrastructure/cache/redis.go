package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRetention bounds how long redis keeps an entry regardless of reader TTLs
const DefaultRetention = 24 * time.Hour

// envelope carries the write time so readers can apply their own TTL
type envelope struct {
	StoredAt int64  `json:"stored_at"` // unix milliseconds
	Value    []byte `json:"value"`
}

// RedisCache is a Cache shared between processes through redis
type RedisCache struct {
	rdb       redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisCache wraps a redis client; every key is stored under prefix
func NewRedisCache(rdb redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{
		rdb:       rdb,
		prefix:    prefix,
		retention: DefaultRetention,
		now:       time.Now,
	}
}

// WithClock replaces the time source
func (c *RedisCache) WithClock(now func() time.Time) *RedisCache {
	c.now = now
	return c
}

// WithRetention replaces the redis-side expiry
func (c *RedisCache) WithRetention(retention time.Duration) *RedisCache {
	c.retention = retention
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if c.now().Sub(time.UnixMilli(env.StoredAt)) >= ttl {
		return nil, false, nil
	}
	return env.Value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	raw, err := json.Marshal(envelope{StoredAt: c.now().UnixMilli(), Value: value})
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, c.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
