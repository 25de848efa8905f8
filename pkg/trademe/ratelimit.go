package trademe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrQuotaExhausted is returned when the call quota of the current window
// has been used up.
var ErrQuotaExhausted = errors.New("API call quota exhausted")

const defaultQuotaWindow = time.Hour

// RateLimiter paces API calls with a token bucket and enforces a call quota
// over a rolling window. Trade Me meters consumers per hour, so the window
// defaults to one hour. A quota of zero disables the quota check.
type RateLimiter struct {
	limiter  *rate.Limiter
	count    atomic.Int64
	maxCalls int64
	window   time.Duration
	resetAt  time.Time
	mu       sync.Mutex
	nowFunc  func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// WithQuotaWindow overrides the length of the quota window.
func WithQuotaWindow(d time.Duration) RateLimiterOption {
	return func(r *RateLimiter) {
		r.window = d
	}
}

// NewRateLimiter creates a rate limiter allowing perSecond calls with the
// given burst, and at most maxCalls per quota window. A non-positive
// perSecond disables pacing; a zero maxCalls disables the quota.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxCalls int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	r := &RateLimiter{
		limiter:  rate.NewLimiter(limit, burst),
		maxCalls: maxCalls,
		window:   defaultQuotaWindow,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(r.window)
	return r
}

// Wait blocks until the token bucket admits a call or ctx is done. It
// returns ErrQuotaExhausted without waiting when the window's quota is used.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkReset()

	if r.maxCalls > 0 && r.count.Load() >= r.maxCalls {
		return fmt.Errorf("%w (%d/%d, resets %s)",
			ErrQuotaExhausted, r.count.Load(), r.maxCalls, r.ResetAt().Format(time.RFC3339))
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.count.Add(1)
	return nil
}

// Count returns the number of calls admitted in the current window.
func (r *RateLimiter) Count() int64 {
	return r.count.Load()
}

// Quota returns the configured per-window call limit; zero means unlimited.
func (r *RateLimiter) Quota() int64 {
	return r.maxCalls
}

// Remaining returns the calls left in the current window, or -1 when the
// quota is unlimited.
func (r *RateLimiter) Remaining() int64 {
	if r.maxCalls <= 0 {
		return -1
	}
	return max(r.maxCalls-r.count.Load(), 0)
}

// ResetAt returns when the current window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.count.Store(0)
		r.resetAt = now.Add(r.window)
	}
}
