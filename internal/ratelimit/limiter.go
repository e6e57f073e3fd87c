package ratelimit

import "context"

// RateLimiter throttles an operation identified by key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Wait(ctx context.Context, key string) error
}
