package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "property:prop-1", `{"share_price_cents":10000}`, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "property:prop-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	var snapshot map[string]int64
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		t.Fatalf("cached value did not round-trip: %v", err)
	}
	if snapshot["share_price_cents"] != 10000 {
		t.Fatalf("unexpected cached snapshot: %s", val)
	}
}

func TestCacheGetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewCache(client)

	if _, err := cache.Get(context.Background(), "absent"); err == nil {
		t.Fatalf("expected error on cache miss")
	}
}

func TestCacheSetNX(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	set, err := cache.SetNX(ctx, "key", "first", time.Minute)
	if err != nil || !set {
		t.Fatalf("expected first SetNX to succeed, got set=%v err=%v", set, err)
	}

	set, err = cache.SetNX(ctx, "key", "second", time.Minute)
	if err != nil {
		t.Fatalf("SetNX failed: %v", err)
	}
	if set {
		t.Fatalf("expected second SetNX to fail because key exists")
	}

	val, err := cache.Get(ctx, "key")
	if err != nil || val != "first" {
		t.Fatalf("expected original value to survive, got val=%q err=%v", val, err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "property:prop-1", "stale", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "property:prop-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "property:prop-1"); err == nil {
		t.Fatalf("expected error getting deleted key")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	client, mr := newTestRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", "lived", 30*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(time.Minute)

	if _, err := cache.Get(ctx, "short"); err == nil {
		t.Fatalf("expected key to expire after TTL")
	}
}
