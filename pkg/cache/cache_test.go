package cache

import (
	"context"
	"testing"
	"time"
)

func TestGoCache(t *testing.T) {
	c := NewGoCache(LocalConfig{
		DefaultExpiration: time.Minute,
		CleanupInterval:   time.Minute,
	})
	defer c.Close()

	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		v, ok := c.Get(ctx, "k")
		if !ok {
			t.Fatal("value not found")
		}
		if v != "v" {
			t.Errorf("expected v, got %v", v)
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = c.Set(ctx, "gone", 1, time.Minute)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if c.Exists(ctx, "gone") {
			t.Error("key still present after delete")
		}
	})

	t.Run("expiration", func(t *testing.T) {
		_ = c.Set(ctx, "short", 1, 30*time.Millisecond)
		time.Sleep(80 * time.Millisecond)
		if _, ok := c.Get(ctx, "short"); ok {
			t.Error("expired value still readable")
		}
	})
}

func TestFactory(t *testing.T) {
	c, err := NewCache(Config{Type: "gocache"})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	c.Close()

	if _, err := NewCache(Config{Type: "memcached"}); err == nil {
		t.Error("unknown type accepted")
	}
}
