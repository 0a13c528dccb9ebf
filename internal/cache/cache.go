// Package cache provides the in-process result cache for ranked match sets.
// Entries are keyed by candidate identifier with a TTL; a janitor goroutine
// evicts expired entries so memory is not held for idle candidates.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
)

// DefaultTTL is how long a ranked result set stays valid without explicit
// invalidation.
const DefaultTTL = time.Hour

// keyPrefix scopes match entries so a global invalidation can recognize them.
const keyPrefix = "match:"

type entry struct {
	results   []matching.RankedMatch
	expiresAt time.Time
}

// ResultCache stores fully-ranked result sets per candidate. At most one entry
// exists per candidate at any time; Set fully replaces rather than merges.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	janitorTicker *time.Ticker
	janitorStop   chan struct{}
}

// New creates a cache with the given TTL (DefaultTTL if zero) and starts the
// eviction janitor. Call Stop on shutdown.
func New(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &ResultCache{
		entries:       make(map[string]entry),
		ttl:           ttl,
		janitorTicker: time.NewTicker(ttl / 2),
		janitorStop:   make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get returns the cached ranked set for a candidate, or ok=false on a miss.
// Expired entries count as misses even before the janitor removes them.
func (c *ResultCache) Get(candidateID string) ([]matching.RankedMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[keyPrefix+candidateID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.results, true
}

// Set replaces any existing entry for the candidate with the given results.
func (c *ResultCache) Set(candidateID string, results []matching.RankedMatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[keyPrefix+candidateID] = entry{
		results:   results,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate removes the entry for a single candidate.
func (c *ResultCache) Invalidate(candidateID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, keyPrefix+candidateID)
}

// InvalidateAll removes every match entry. Called when job-posting data
// changes, since any cached ranking would then be stale.
func (c *ResultCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, keyPrefix) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of live entries, counting expired-but-unswept ones.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop halts the janitor goroutine.
func (c *ResultCache) Stop() {
	c.janitorTicker.Stop()
	close(c.janitorStop)
}

func (c *ResultCache) janitor() {
	for {
		select {
		case <-c.janitorTicker.C:
			c.evictExpired()
		case <-c.janitorStop:
			return
		}
	}
}

func (c *ResultCache) evictExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
