// internal/cache/lru_test.go
package cache

import (
	"testing"
	"time"
)

func TestEvictionOrder(t *testing.T) {
	c := New(2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a evicted out of order")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(4, time.Minute)
	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }

	c.Set("tiers", "cached")
	if v, ok := c.Get("tiers"); !ok || v != "cached" {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("tiers"); ok {
		t.Fatal("expired entry served")
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d after expiry sweep", c.Len())
	}

	// A fresh Set restarts the lifetime.
	c.Set("tiers", "again")
	if _, ok := c.Get("tiers"); !ok {
		t.Fatal("refreshed entry missing")
	}
}

func TestDelete(t *testing.T) {
	c := New(2, 0)
	c.Set("categories", []string{"dining"})
	c.Delete("categories")
	if _, ok := c.Get("categories"); ok {
		t.Fatal("deleted entry served")
	}
	c.Delete("categories") // absent key is a no-op
}
