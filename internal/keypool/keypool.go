// Package keypool manages a pool of API credentials for the external scoring
// oracle. Keys rotate on failure; when every key has been marked failed the
// failed set is cleared so the pool never deadlocks.
package keypool

import (
	"errors"
	"sync"
)

// ErrNoKeys indicates the pool was constructed without any credentials.
var ErrNoKeys = errors.New("keypool: no API keys configured")

// Pool is a process-wide credential pool shared by every in-flight ranking
// request. All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	keys    []string
	current int
	failed  map[int]bool
}

// New creates a pool over the given keys. Returns ErrNoKeys for an empty list.
func New(keys []string) (*Pool, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	return &Pool{
		keys:   keys,
		failed: make(map[int]bool),
	}, nil
}

// Current returns the key at the cursor, advancing past keys already marked
// failed. If every key is marked failed the failed set is reset first, so a
// key is always returned.
func (p *Pool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.failed) >= len(p.keys) {
		p.failed = make(map[int]bool)
	}

	for p.failed[p.current] {
		p.current = (p.current + 1) % len(p.keys)
	}
	return p.keys[p.current]
}

// MarkFailed records the current key as failed and advances the cursor.
// The next Current call skips failed keys (or resets if none remain).
func (p *Pool) MarkFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed[p.current] = true
	p.current = (p.current + 1) % len(p.keys)
}

// Size returns the number of keys in the pool.
func (p *Pool) Size() int {
	return len(p.keys)
}

// FailedCount returns how many keys are currently marked failed.
func (p *Pool) FailedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.failed)
}
