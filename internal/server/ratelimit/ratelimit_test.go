package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_AllowWithinLimit(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, Limit: 5, Window: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("client-a")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, info := l.Allow("client-a")
	if allowed {
		t.Error("request past the limit should be denied")
	}
	if info.RetryAfter <= 0 {
		t.Error("denied requests must carry a retry-after hint")
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, Limit: 1, Window: time.Minute})
	defer l.Stop()

	l.Allow("client-a")
	if allowed, _ := l.Allow("client-a"); allowed {
		t.Error("client-a should be limited")
	}
	if allowed, _ := l.Allow("client-b"); !allowed {
		t.Error("client-b must not be affected by client-a's usage")
	}
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, Limit: 1, Window: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("client-a"); !allowed {
			t.Fatal("disabled limiter must allow all requests")
		}
	}
}

func TestLimiter_Refills(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, Limit: 10, Window: 100 * time.Millisecond})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		l.Allow("client-a")
	}
	if allowed, _ := l.Allow("client-a"); allowed {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(30 * time.Millisecond)

	if allowed, _ := l.Allow("client-a"); !allowed {
		t.Error("bucket should have refilled at least one token")
	}
}
