package oracle

import (
	"sync"
	"time"
)

// Budget enforces a rolling fixed-window request quota on outbound oracle
// calls. It is a process-wide singleton shared by every in-flight ranking
// request, so all state is mutex-guarded.
type Budget struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	used        int
	windowStart time.Time
}

// NewBudget creates a budget allowing limit requests per window.
func NewBudget(limit int, window time.Duration) *Budget {
	return &Budget{
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// Allow consumes one request from the current window if any remain.
// It never blocks; callers that are denied degrade gracefully instead of
// waiting for the window to roll over.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollWindow()
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Remaining reports how many requests are left in the current window.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollWindow()
	return b.limit - b.used
}

// rollWindow resets the counter once the window has elapsed.
// Callers must hold b.mu.
func (b *Budget) rollWindow() {
	if time.Since(b.windowStart) >= b.window {
		b.used = 0
		b.windowStart = time.Now()
	}
}
