package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return NewCache(rc, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	c.SetJSON("cache:stories:visible", map[string]string{"a": "b"})

	b, ok := c.GetBytes("cache:stories:visible")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if string(b) != `{"a":"b"}` {
		t.Fatalf("unexpected payload %s", b)
	}
	if ttl := mr.TTL("cache:stories:visible"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
}

func TestCacheInvalidateByPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	c.SetJSON("cache:stories:visible", 1)
	c.SetJSON("cache:stories:archive", 2)
	c.SetJSON("other:key", 3)

	c.InvalidateByPrefix("cache:stories:")

	if mr.Exists("cache:stories:visible") || mr.Exists("cache:stories:archive") {
		t.Fatalf("expected prefixed keys to be removed")
	}
	if !mr.Exists("other:key") {
		t.Fatalf("unrelated key must survive")
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	c.SetJSON("k", 1)
	c.InvalidateByPrefix("k")
	if _, ok := c.GetBytes("k"); ok {
		t.Fatalf("nil cache must never hit")
	}

	empty := NewCache(nil, 0)
	empty.SetJSON("k", 1)
	if _, ok := empty.GetBytes("k"); ok {
		t.Fatalf("cache without client must never hit")
	}
}
