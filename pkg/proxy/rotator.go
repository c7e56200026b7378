// Package proxy manages a pool of outbound proxy endpoints with
// rotation and permanent eviction of endpoints that stop working.
package proxy

import (
	"math/rand"
	"sync"
)

// Rotator hands out proxy endpoints, avoiding immediate reuse of the
// last endpoint it returned. Evicted endpoints never come back.
type Rotator struct {
	mu        sync.Mutex
	endpoints []string
	lastUsed  string
	rand      *rand.Rand
}

// New creates a Rotator over the given endpoints. Duplicates are
// collapsed so eviction removes an endpoint exactly once.
func New(endpoints []string) *Rotator {
	seen := make(map[string]struct{}, len(endpoints))
	unique := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		unique = append(unique, e)
	}

	return &Rotator{
		endpoints: unique,
		rand:      rand.New(rand.NewSource(rand.Int63())),
	}
}

// Next returns a random endpoint from the pool, never the same one as
// the previous call when more than one endpoint remains. The second
// return is false when the pool is empty.
func (r *Rotator) Next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch len(r.endpoints) {
	case 0:
		return "", false
	case 1:
		r.lastUsed = r.endpoints[0]
		return r.endpoints[0], true
	}

	candidates := make([]string, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		if e != r.lastUsed {
			candidates = append(candidates, e)
		}
	}

	pick := candidates[r.rand.Intn(len(candidates))]
	r.lastUsed = pick
	return pick, true
}

// Evict permanently removes an endpoint from the pool. Returns true if
// the endpoint was present.
func (r *Rotator) Evict(endpoint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.endpoints {
		if e == endpoint {
			r.endpoints = append(r.endpoints[:i], r.endpoints[i+1:]...)
			if r.lastUsed == endpoint {
				r.lastUsed = ""
			}
			return true
		}
	}
	return false
}

// Size reports how many endpoints remain in the pool.
func (r *Rotator) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}
