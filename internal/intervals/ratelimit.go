package intervals

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// intervals.icu does not publish its limits in response headers. We keep a
// conservative client-side budget and back off whenever the server answers 429.

// RateLimiter manages the request budget against the intervals.icu API
type RateLimiter struct {
	mu sync.Mutex

	// Rolling window budget
	limit     int
	window    time.Duration
	usage     int
	resetsAt  time.Time
	throttled int

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time

	// Set from Retry-After on 429 responses
	blockedUntil time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
func NewRateLimiter(limit int, window, minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		resetsAt:    time.Now().Add(window),
		minInterval: minInterval,
	}
}

// DefaultRateLimiter returns the limiter used by NewClient
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(60, time.Minute, 100*time.Millisecond)
}

// Wait blocks until a request can be made without exceeding the budget
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Server asked us to back off
	if wait := time.Until(r.blockedUntil); wait > 0 {
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}

	now := time.Now()
	if now.After(r.resetsAt) {
		r.usage = 0
		r.resetsAt = now.Add(r.window)
	}

	if r.usage >= r.limit {
		if err := r.sleep(ctx, time.Until(r.resetsAt)); err != nil {
			return err
		}
		r.usage = 0
		r.resetsAt = time.Now().Add(r.window)
	}

	elapsed := time.Since(r.lastRequest)
	if elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.usage++
	r.lastRequest = time.Now()

	return nil
}

// sleep releases the lock while waiting. Must be called with r.mu held.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff records a 429 response. Retry-After may be delta-seconds or an HTTP
// date; when absent the limiter waits for the current window to reset.
func (r *RateLimiter) Backoff(h http.Header) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.throttled++
	now := time.Now()
	wait := time.Until(r.resetsAt)

	if ra := h.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			wait = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(ra); err == nil {
			wait = at.Sub(now)
		}
	}
	if wait < 0 {
		wait = 0
	}

	r.blockedUntil = now.Add(wait)
	return wait
}

// Status returns the remaining budget in the current window
func (r *RateLimiter) Status() (remaining int, resetsAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit - r.usage, r.resetsAt
}

// Throttled returns how many 429 responses have been seen
func (r *RateLimiter) Throttled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.throttled
}
