package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextEmptyPool(t *testing.T) {
	r := New(nil)

	_, ok := r.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Size())
}

func TestNextSingleEndpoint(t *testing.T) {
	r := New([]string{"http://p1:8080"})

	for i := 0; i < 5; i++ {
		got, ok := r.Next()
		assert.True(t, ok)
		assert.Equal(t, "http://p1:8080", got)
	}
}

func TestNextAvoidsImmediateReuse(t *testing.T) {
	r := New([]string{"p1", "p2", "p3"})

	prev, ok := r.Next()
	assert.True(t, ok)

	for i := 0; i < 100; i++ {
		got, ok := r.Next()
		assert.True(t, ok)
		assert.NotEqual(t, prev, got, "consecutive calls returned the same endpoint")
		prev = got
	}
}

func TestNextTwoEndpointsAlternates(t *testing.T) {
	r := New([]string{"p1", "p2"})

	first, _ := r.Next()
	for i := 0; i < 10; i++ {
		got, _ := r.Next()
		assert.NotEqual(t, first, got)
		first = got
	}
}

func TestEvict(t *testing.T) {
	r := New([]string{"p1", "p2", "p3"})

	assert.True(t, r.Evict("p2"))
	assert.Equal(t, 2, r.Size())

	// Evicted endpoints never come back.
	for i := 0; i < 50; i++ {
		got, ok := r.Next()
		assert.True(t, ok)
		assert.NotEqual(t, "p2", got)
	}

	assert.False(t, r.Evict("p2"))
}

func TestEvictDownToEmpty(t *testing.T) {
	r := New([]string{"p1", "p2"})

	assert.True(t, r.Evict("p1"))
	assert.True(t, r.Evict("p2"))

	_, ok := r.Next()
	assert.False(t, ok)
}

func TestEvictLastUsedResetsExclusion(t *testing.T) {
	r := New([]string{"p1", "p2"})

	used, _ := r.Next()
	assert.True(t, r.Evict(used))

	// The survivor must still be reachable even though rotation would
	// normally skip the previous pick.
	got, ok := r.Next()
	assert.True(t, ok)
	assert.NotEqual(t, used, got)
}

func TestNewDeduplicates(t *testing.T) {
	r := New([]string{"p1", "p1", "", "p2"})
	assert.Equal(t, 2, r.Size())
}
