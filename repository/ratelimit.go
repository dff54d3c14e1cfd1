package repository

import "context"

// RateLimiter throttles write-inducing requests per client key. Mutating
// endpoints must consume a token before performing any side effect.
type RateLimiter interface {
	// Consume spends one token for key and reports whether the request is
	// allowed. The backing counter is an implementation detail.
	Consume(ctx context.Context, key string) (bool, error)
}
