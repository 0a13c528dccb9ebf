// Package ratelimit provides inbound per-client rate limiting for the API
// using a token bucket per client.
package ratelimit

import (
	"sync"
	"time"
)

// Config holds the limiter settings. Limit requests per Window, with Burst as
// the instantaneous ceiling (defaults to Limit).
type Config struct {
	Enabled         bool
	Limit           int
	Window          time.Duration
	Burst           int
	CleanupInterval time.Duration
}

// DefaultConfig allows 120 requests per minute per client.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Limit:           120,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Info reports the limit state returned alongside each Allow decision.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func (b *bucket) take() (bool, int, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}

	wait := time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
	return false, 0, wait
}

// Limiter tracks a token bucket per client identifier.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	lastAccess map[string]time.Time
	config     *Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a limiter. A periodic sweep drops buckets for clients
// that have gone quiet, so memory does not grow with client churn.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
		config:     config,
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow consumes one request for the client if within limits.
func (l *Limiter) Allow(clientID string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	b := l.getBucket(clientID)
	allowed, remaining, retryAfter := b.take()
	return allowed, Info{
		Allowed:    allowed,
		Limit:      l.config.Limit,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}
}

// Stop halts the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}

func (l *Limiter) getBucket(clientID string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[clientID] = time.Now()
	if b, ok := l.buckets[clientID]; ok {
		return b
	}

	capacity := l.config.Burst
	if capacity <= 0 {
		capacity = l.config.Limit
	}
	b := &bucket{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		refillRate: float64(l.config.Limit) / l.config.Window.Seconds(),
		lastRefill: time.Now(),
	}
	l.buckets[clientID] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.sweep()
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-time.Hour)
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, id)
			delete(l.lastAccess, id)
		}
	}
}
