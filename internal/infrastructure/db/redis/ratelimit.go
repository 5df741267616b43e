package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client key in a fixed window, shared
// across processes. Key format: ratelimit:<client key>.
type RateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewRateLimiter creates a fixed-window limiter allowing max requests per
// window for each key.
func NewRateLimiter(client *redis.Client, max int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, max: max, window: window}
}

// Allow increments the key's counter and reports whether it is still within
// budget. The window TTL starts on the first hit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	return count <= l.max, nil
}
