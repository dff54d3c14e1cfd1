package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/buyerdesk/backend/repository"
)

type rateLimiter struct {
	client *redislib.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a fixed-window rate limiter backed by Redis. Each
// Consume increments the counter for the caller's key; the first hit of a
// window sets the expiry, and requests are rejected once the counter passes
// the limit.
func NewRateLimiter(client *redislib.Client, limit int, window time.Duration) repository.RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		client: client,
		prefix: "ratelimit:",
		limit:  limit,
		window: window,
	}
}

func (r *rateLimiter) Consume(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s%s", r.prefix, key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(r.limit), nil
}
