package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultLimitPerSec = 1
	defaultBurst       = 2
)

var _ RateLimiter = (*LocalRateLimiter)(nil)

// LocalRateLimiter is an in-process per-key token bucket. The tracker is a
// single process, so unlike a fleet of dispatch workers it needs no shared
// limiter backend; this mainly keeps a trigger-happy UI from stampeding the
// remote progress endpoint with manual refreshes.
type LocalRateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limitPerSec float64
	burst       int
}

func NewLocalRateLimiter(limitPerSec float64, burst int) *LocalRateLimiter {
	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	return &LocalRateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		limitPerSec: limitPerSec,
		burst:       burst,
	}
}

func (l *LocalRateLimiter) limiterFor(key string) (*rate.Limiter, error) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return nil, fmt.Errorf("rate limit key is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[normalized]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.limitPerSec), l.burst)
		l.limiters[normalized] = limiter
	}
	return limiter, nil
}

func (l *LocalRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	limiter, err := l.limiterFor(key)
	if err != nil {
		return false, err
	}
	return limiter.Allow(), nil
}

func (l *LocalRateLimiter) Wait(ctx context.Context, key string) error {
	if l == nil {
		return fmt.Errorf("rate limiter is not initialized")
	}

	limiter, err := l.limiterFor(key)
	if err != nil {
		return err
	}
	return limiter.Wait(ctx)
}
