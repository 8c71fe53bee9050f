package probe

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ProbeFunc runs the full probe sequence for one URL.
type ProbeFunc func(ctx context.Context, url string) Result

// Cache maps a URL, compared as an exact string, to its probe result for the
// duration of one run. Concurrent lookups of the same URL share a single
// in-flight probe, and a URL is never probed twice.
type Cache struct {
	mu      sync.Mutex
	results map[string]Result
	group   singleflight.Group

	lookups atomic.Int64
	probes  atomic.Int64
}

// NewCache creates an empty cache. Build one per run.
func NewCache() *Cache {
	return &Cache{results: make(map[string]Result)}
}

// Get returns the stored result for url, if any.
func (c *Cache) Get(url string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[url]
	return r, ok
}

// Resolve returns the cached result for url or runs probe to compute it.
// The boolean is true when the result was not computed by this call.
func (c *Cache) Resolve(ctx context.Context, url string, probe ProbeFunc) (Result, bool) {
	c.lookups.Add(1)

	if r, ok := c.Get(url); ok {
		return r, true
	}

	executed := false
	v, _, _ := c.group.Do(url, func() (interface{}, error) {
		// A previous flight may have stored the result after our first check
		if r, ok := c.Get(url); ok {
			return r, nil
		}

		executed = true
		c.probes.Add(1)
		r := probe(ctx, url)

		c.mu.Lock()
		c.results[url] = r
		c.mu.Unlock()
		return r, nil
	})

	return v.(Result), !executed
}

// Len returns the number of distinct URLs resolved so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Stats returns the number of lookups and the number of probe sequences
// actually executed.
func (c *Cache) Stats() (lookups, probes int64) {
	return c.lookups.Load(), c.probes.Load()
}
