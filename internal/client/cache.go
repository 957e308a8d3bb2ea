package client

import (
	"sync"
	"time"
)

// Key identifies a cached response.
type Key struct {
	Method string
	URL    string
	Body   string
}

func (k Key) String() string {
	if k.Body == "" {
		return k.Method + " " + k.URL
	}
	return k.Method + " " + k.URL + " " + k.Body
}

type entry struct {
	value    any
	storedAt time.Time
	fallback bool
}

// Cache holds decoded responses for a fixed time. Fallback entries live
// FallbackFactor times longer than live ones.
type Cache struct {
	ttl         time.Duration
	fallbackTTL time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[Key]entry
}

// NewCache creates a cache. A factor below 1 is treated as 1.
func NewCache(ttl time.Duration, fallbackFactor int, now func() time.Time) *Cache {
	if fallbackFactor < 1 {
		fallbackFactor = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:         ttl,
		fallbackTTL: ttl * time.Duration(fallbackFactor),
		now:         now,
		entries:     make(map[Key]entry),
	}
}

func (c *Cache) expired(e entry, now time.Time) bool {
	ttl := c.ttl
	if e.fallback {
		ttl = c.fallbackTTL
	}
	return now.Sub(e.storedAt) >= ttl
}

// Get returns the value stored under k unless it has expired.
func (c *Cache) Get(k Key) (value any, fallback, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[k]
	if !found {
		return nil, false, false
	}
	if c.expired(e, c.now()) {
		delete(c.entries, k)
		return nil, false, false
	}
	return e.value, e.fallback, true
}

// Put stores value under k.
func (c *Cache) Put(k Key, value any, fallback bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry{value: value, storedAt: c.now(), fallback: fallback}
}

// Sweep deletes expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// DropFallback deletes every fallback entry.
func (c *Cache) DropFallback() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if e.fallback {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// Len is the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
