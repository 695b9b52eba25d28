// Package ttlcache is a keyed store with per-entry expiry, used as a
// read-through cache for idempotent remote fetches. There is no capacity
// bound: entries are small and short-lived, TTL is the only eviction policy.
package ttlcache

import (
	"sync"
	"time"
)

// DefaultTTL applies when Set is called with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value    V
	storedAt time.Time
	ttl      time.Duration
}

func (e entry[V]) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

type Cache[V any] struct {
	mu         sync.Mutex
	defaultTTL time.Duration
	entries    map[string]entry[V]

	now func() time.Time
}

// New creates a cache whose Set default is defaultTTL; non-positive means
// DefaultTTL.
func New[V any](defaultTTL time.Duration) *Cache[V] {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache[V]{
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry[V]),
		now:        time.Now,
	}
}

// Set stores value under key. A non-positive ttl uses the cache default.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now(), ttl: ttl}
}

// Get returns the value for key. Expired entries are treated as absent and
// removed lazily.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cleanup eagerly purges all expired entries and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len counts live entries, including not-yet-expired ones only.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
