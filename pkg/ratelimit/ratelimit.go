// Package ratelimit provides a client-side token bucket for throttling
// outgoing requests.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrExhausted is returned by Wait when the bucket is empty and never refills.
var ErrExhausted = errors.New("ratelimit: bucket exhausted and refill rate is zero")

// RateLimiter blocks or rejects calls above a configured rate.
type RateLimiter interface {
	Wait(ctx context.Context) error
	Allow() bool
}

// TokenBucket starts full with capacity tokens and refills at refillRate
// tokens per second. A refillRate of zero or less makes it a fixed budget.
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a bucket. A capacity below one is raised to one.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	tb := &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		now:        time.Now,
	}
	tb.lastRefill = tb.now()
	return tb
}

// caller holds mu
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow takes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// reserve takes a token or reports how long until one is available.
func (tb *TokenBucket) reserve() (time.Duration, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return 0, nil
	}
	if tb.refillRate <= 0 {
		return 0, ErrExhausted
	}
	return time.Duration((1 - tb.tokens) / tb.refillRate * float64(time.Second)), nil
}

// Wait blocks until a token is taken or ctx is done. A fixed budget that has
// run out fails at once with ErrExhausted.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait, err := tb.reserve()
		if err != nil {
			return err
		}
		if wait == 0 {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Remaining is the number of whole tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return int(tb.tokens)
}
