// internal/cache/lru.go
//
// Tiny TTL'd LRU cache used by the reference-data repositories (VIP tiers,
// blog categories) to spare the database on every render.  No external
// deps; good for a few thousand entries.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a least-recently-used cache with per-entry expiry.  Safe for
// concurrent use.
type LRU struct {
	cap int
	ttl time.Duration

	mu   sync.Mutex
	ll   *list.List
	dict map[string]*list.Element

	// now is swappable for tests.
	now func() time.Time
}

type entry struct {
	key string
	val any
	exp time.Time
}

// New returns an LRU with the given capacity and entry lifetime.  ttl <= 0
// means entries never expire.  Panics on capacity < 1.
func New(capacity int, ttl time.Duration) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}
	return &LRU{
		cap:  capacity,
		ttl:  ttl,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
		now:  time.Now,
	}
}

// Get retrieves a live value and marks it MRU.  Expired entries are removed
// on the way out and reported as misses.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return nil, false
	}
	ent := ele.Value.(entry)
	if !ent.exp.IsZero() && c.now().After(ent.exp) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return nil, false
	}
	c.ll.MoveToFront(ele)
	return ent.val, true
}

// Set inserts or updates a value, restarting its lifetime.
func (c *LRU) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}

	if ele, hit := c.dict[key]; hit {
		ele.Value = entry{key, val, exp}
		c.ll.MoveToFront(ele)
		return
	}
	ele := c.ll.PushFront(entry{key, val, exp})
	c.dict[key] = ele
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(entry).key)
	}
}

// Delete drops a key, if present.  Used when a change notification arrives
// for cached reference data.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.dict[key]; hit {
		c.ll.Remove(ele)
		delete(c.dict, key)
	}
}

// Len reports current size, expired entries included until they are swept
// by a Get.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
