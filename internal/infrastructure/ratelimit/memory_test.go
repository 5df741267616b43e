package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_BudgetAndReset(t *testing.T) {
	l := NewMemoryLimiter(100, time.Hour)

	now := time.Now()
	l.SetClock(func() time.Time { return now })

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d rejected within budget", i+1)
		}
	}

	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Fatalf("request 101 must be rejected")
	}

	// A different key has its own window.
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("independent key rejected")
	}

	// After the window elapses the counter starts over.
	now = now.Add(time.Hour + time.Second)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatalf("request after window reset rejected")
	}
}

func TestMemoryLimiter_ZeroBudgetRejectsAll(t *testing.T) {
	l := NewMemoryLimiter(0, time.Minute)
	if ok, _ := l.Allow(context.Background(), "k"); ok {
		t.Fatalf("zero budget must reject the first request")
	}
}
