// Package cache provides a process-lifetime in-memory key/value store
// with per-entry time-to-live. It backs both the item result cache and
// the per-item rate-limit flags; nothing is ever persisted.
package cache

import (
	"sync"
	"time"
)

// entry holds one cached value with its expiry bookkeeping
type entry[V any] struct {
	value     V
	createdAt time.Time
	ttl       time.Duration
}

// expired reports whether the entry's TTL has elapsed
func (e *entry[V]) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Stats describes the cache contents at a point in time
type Stats struct {
	Total      int           `json:"total_entries"`
	Active     int           `json:"active_entries"`
	Expired    int           `json:"expired_entries"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// Cache is a mutex-guarded TTL cache. Expired entries are
// indistinguishable from absent ones to readers; they are purged lazily
// on Get or in bulk by Sweep.
type Cache[V any] struct {
	defaultTTL time.Duration
	entries    map[string]entry[V]
	mu         sync.Mutex

	// now is swappable for tests
	now func() time.Time
}

// New creates a cache with the given default TTL for Set
func New[V any](defaultTTL time.Duration) *Cache[V] {
	return &Cache[V]{
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry[V]),
		now:        time.Now,
	}
}

// Get returns the value for key if present and unexpired. An expired
// entry is removed and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with a per-entry TTL override
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
	}
}

// Delete removes key and reports whether it existed
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear removes every entry and returns the number removed
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.entries)
	c.entries = make(map[string]entry[V])
	return count
}

// Sweep removes all expired entries and returns the number removed
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats returns entry counts without purging anything
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := 0
	for _, e := range c.entries {
		if e.expired(now) {
			expired++
		}
	}

	total := len(c.entries)
	return Stats{
		Total:      total,
		Active:     total - expired,
		Expired:    expired,
		DefaultTTL: c.defaultTTL,
	}
}
