// Package cache stores upstream lookup responses for a bounded time.
// A cache is constructed once per process and passed to the data sources that use it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cache is a byte-value store whose reads honour the caller's TTL
type Cache interface {
	// Get returns the value stored under key when it is younger than ttl
	Get(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key joins key parts; long keys are hashed so they stay bounded
func Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if len(key) <= 200 {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return parts[0] + ":" + hex.EncodeToString(sum[:])
}

// DefaultMemoryRetention is how long a MemoryCache keeps an entry nobody reads
const DefaultMemoryRetention = time.Hour

type memoryEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache is a process-local Cache. Expired entries are dropped when read;
// entries older than the retention are swept on Set at most once per retention
// period, so keys that are never read again do not accumulate.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	now       func() time.Time
	retention time.Duration
	lastSweep time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates a cache that reads time from now
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries:   make(map[string]memoryEntry),
		now:       now,
		retention: DefaultMemoryRetention,
		lastSweep: now(),
	}
}

// WithRetention sets how long unread entries are kept. It should be at least
// the longest TTL callers read with; non-positive values are ignored.
func (c *MemoryCache) WithRetention(d time.Duration) *MemoryCache {
	if d > 0 {
		c.mu.Lock()
		c.retention = d
		c.mu.Unlock()
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(entry.storedAt) >= ttl {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current.storedAt.Equal(entry.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	now := c.now()
	c.mu.Lock()
	if now.Sub(c.lastSweep) >= c.retention {
		c.sweep(now)
	}
	c.entries[key] = memoryEntry{value: stored, storedAt: now}
	c.mu.Unlock()
	return nil
}

// sweep drops entries older than the retention. Callers hold mu.
func (c *MemoryCache) sweep(now time.Time) {
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.retention {
			delete(c.entries, key)
		}
	}
	c.lastSweep = now
}

// Len returns the number of entries held, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Nop is a Cache that never stores anything
type Nop struct{}

func (Nop) Get(context.Context, string, time.Duration) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error                       { return nil }
