package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("expected the first two calls to pass")
	}
	if l.Allow("a") {
		t.Fatalf("expected the bucket to be empty")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("expected one token after 1.5s")
	}
	if l.Allow("a") {
		t.Fatalf("expected half a token left only")
	}
}

func TestLimiterSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 0.001)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Hour)
	l.Allow("b")
	if n := l.Sweep(time.Minute); n != 1 {
		t.Fatalf("expected one idle key, got %d", n)
	}
	if !l.Allow("a") {
		t.Fatalf("a swept key starts with a full bucket")
	}
}
