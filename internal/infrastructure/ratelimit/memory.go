// Package ratelimit provides the in-process fixed-window limiter used when
// no Redis instance is configured.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter is a mutex-guarded per-key fixed-window counter. Expired
// windows are evicted lazily on access.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int64
	windowD time.Duration
	entries map[string]*window
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter allowing max requests per window for
// each key.
func NewMemoryLimiter(max int64, windowD time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		windowD: windowD,
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow increments the key's counter and reports whether it is still within
// budget. The window starts on the first hit and resets once it elapses.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.entries[key]
	if !ok || now.After(w.resetAt) {
		l.entries[key] = &window{count: 1, resetAt: now.Add(l.windowD)}
		return l.max >= 1, nil
	}

	w.count++
	return w.count <= l.max, nil
}

// SetClock overrides the time source. Intended for use in tests only.
func (l *MemoryLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
