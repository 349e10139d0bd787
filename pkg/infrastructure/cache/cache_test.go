package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func exerciseTTL(t *testing.T, c Cache, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "k", time.Minute); ok || err != nil {
		t.Fatalf("Expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err := c.Get(ctx, "k", time.Minute)
	if err != nil || !ok || string(value) != "v1" {
		t.Fatalf("Expected v1, got %q ok=%v err=%v", value, ok, err)
	}

	clock.Advance(59 * time.Second)
	if _, ok, _ := c.Get(ctx, "k", time.Minute); !ok {
		t.Error("Expected hit before the TTL elapses")
	}

	clock.Advance(time.Second)
	if _, ok, _ := c.Get(ctx, "k", time.Minute); ok {
		t.Error("Expected miss once the TTL elapsed")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCacheWithClock(clock.Now)

	exerciseTTL(t, c, clock)

	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted, %d left", c.Len())
	}
}

func TestMemoryCache_SweepsUnreadEntries(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCacheWithClock(clock.Now).WithRetention(10 * time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "old-1", []byte("a"))
	_ = c.Set(ctx, "old-2", []byte("b"))

	clock.Advance(6 * time.Minute)
	_ = c.Set(ctx, "recent", []byte("c"))
	if c.Len() != 3 {
		t.Fatalf("Expected no sweep inside the retention, got %d entries", c.Len())
	}

	clock.Advance(5 * time.Minute)
	_ = c.Set(ctx, "new", []byte("d"))
	if c.Len() != 2 {
		t.Fatalf("Expected entries past the retention to be swept, got %d entries", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "recent", time.Hour); !ok {
		t.Error("Expected entry inside the retention to survive the sweep")
	}
	if _, ok, _ := c.Get(ctx, "old-1", time.Hour); ok {
		t.Error("Expected swept entry to be gone")
	}
}

func TestMemoryCache_WithRetentionIgnoresNonPositive(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCacheWithClock(clock.Now).WithRetention(0)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"))
	clock.Advance(DefaultMemoryRetention - time.Second)
	_ = c.Set(ctx, "other", []byte("w"))
	if c.Len() != 2 {
		t.Errorf("Expected the default retention to apply, got %d entries", c.Len())
	}
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	c := NewMemoryCache()
	value := []byte("abc")
	_ = c.Set(context.Background(), "k", value)
	value[0] = 'x'

	got, _, _ := c.Get(context.Background(), "k", time.Minute)
	if string(got) != "abc" {
		t.Errorf("Expected stored copy abc, got %s", got)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Error("Expected empty cache after Clear")
	}
}

func TestRedisCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	clock := newFakeClock()
	c := NewRedisCache(rdb, "test:").WithClock(clock.Now)

	exerciseTTL(t, c, clock)

	if !mr.Exists("test:k") {
		t.Error("Expected key stored under prefix")
	}
	if ttl := mr.TTL("test:k"); ttl != DefaultRetention {
		t.Errorf("Expected retention %s, got %s", DefaultRetention, ttl)
	}
	// a reader with a longer TTL still sees the entry
	if _, ok, _ := c.Get(context.Background(), "k", time.Hour); !ok {
		t.Error("Expected hit with a longer TTL")
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestRedisCache_Errors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()

	c := NewRedisCache(rdb, "")
	if err := mr.Set("broken", "not json"); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "broken", time.Minute); err == nil || ok {
		t.Error("Expected decode error for malformed entry")
	}

	mr.Close()
	if _, _, err := c.Get(context.Background(), "k", time.Minute); err == nil {
		t.Error("Expected error when redis is down")
	}
}

func TestKey(t *testing.T) {
	if got := Key("ontology", "bom", "P1"); got != "ontology:bom:P1" {
		t.Errorf("Unexpected key %s", got)
	}

	long := Key("ontology", strings.Repeat("M", 300))
	if len(long) > 100 || !strings.HasPrefix(long, "ontology:") {
		t.Errorf("Expected hashed key, got %s", long)
	}
	if long != Key("ontology", strings.Repeat("M", 300)) {
		t.Error("Expected stable hashing")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	_ = c.Set(context.Background(), "k", []byte("v"))
	if _, ok, _ := c.Get(context.Background(), "k", time.Hour); ok {
		t.Error("Nop cache must never hit")
	}
}
