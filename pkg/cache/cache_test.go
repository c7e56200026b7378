package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// withClock pins the cache to a controllable clock
func withClock[V any](c *Cache[V]) *time.Time {
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }
	return &now
}

func TestGetSetWithinTTL(t *testing.T) {
	c := New[string](time.Second)
	now := withClock(c)

	c.Set("a", "value")

	*now = now.Add(500 * time.Millisecond)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestGetAfterExpiry(t *testing.T) {
	c := New[string](time.Second)
	now := withClock(c)

	c.Set("a", "value")

	*now = now.Add(1100 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)

	// Lazy purge removed the entry entirely.
	assert.Equal(t, 0, c.Stats().Total)
}

func TestGetMissing(t *testing.T) {
	c := New[int](time.Second)
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestSetWithTTLOverride(t *testing.T) {
	c := New[string](time.Second)
	now := withClock(c)

	c.SetWithTTL("long", "v", time.Hour)

	*now = now.Add(time.Minute)
	_, ok := c.Get("long")
	assert.True(t, ok, "per-entry TTL should override the default")
}

func TestSetOverwritesResettingTTL(t *testing.T) {
	c := New[string](time.Second)
	now := withClock(c)

	c.Set("a", "old")
	*now = now.Add(900 * time.Millisecond)
	c.Set("a", "new")

	*now = now.Add(900 * time.Millisecond)
	got, ok := c.Get("a")
	assert.True(t, ok, "overwrite should restart the TTL clock")
	assert.Equal(t, "new", got)
}

func TestDelete(t *testing.T) {
	c := New[string](time.Second)
	c.Set("a", "v")

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSweep(t *testing.T) {
	c := New[string](time.Second)
	now := withClock(c)

	c.Set("fresh1", "v")
	c.SetWithTTL("stale1", "v", 100*time.Millisecond)
	c.SetWithTTL("stale2", "v", 100*time.Millisecond)

	*now = now.Add(500 * time.Millisecond)
	assert.Equal(t, 2, c.Sweep())

	stats := c.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Active)
}

func TestStats(t *testing.T) {
	c := New[string](2 * time.Second)
	now := withClock(c)

	c.Set("a", "v")
	c.SetWithTTL("b", "v", 100*time.Millisecond)

	*now = now.Add(time.Second)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 2*time.Second, stats.DefaultTTL)
}

func TestClear(t *testing.T) {
	c := New[bool](time.Second)
	c.Set("a", true)
	c.Set("b", false)

	assert.Equal(t, 2, c.Clear())
	assert.Equal(t, 0, c.Stats().Total)
}

func TestBooleanFlagUsage(t *testing.T) {
	// The rate-limit flag store is just a Cache[bool]; presence of an
	// unexpired entry is what matters, not the stored value.
	flags := New[bool](time.Minute)
	now := withClock(flags)

	flags.SetWithTTL("ratelimit:ABC123", true, time.Minute)

	_, active := flags.Get("ratelimit:ABC123")
	assert.True(t, active)

	*now = now.Add(2 * time.Minute)
	_, active = flags.Get("ratelimit:ABC123")
	assert.False(t, active)
}
