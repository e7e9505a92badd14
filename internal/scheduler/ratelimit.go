package scheduler

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter shared by all workers of a
// run: at most maxRequests dispatches per window. A zero or negative
// maxRequests disables limiting.
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu     sync.Mutex
	stamps []time.Time
}

// NewRateLimiter creates a sliding-window rate limiter.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
	}
}

// CanProceed reports whether a request may be dispatched now. When it
// may, the request is recorded against the window. When it may not,
// the returned duration says how long until the oldest tracked
// request leaves the window.
func (r *RateLimiter) CanProceed() (bool, time.Duration) {
	if r.maxRequests <= 0 {
		return true, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.prune(now)

	if len(r.stamps) < r.maxRequests {
		r.stamps = append(r.stamps, now)
		return true, 0
	}

	wait := r.window - now.Sub(r.stamps[0])
	if wait < 0 {
		wait = 0
	}
	return false, wait
}

// Wait blocks until a dispatch slot is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		ok, wait := r.CanProceed()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// CurrentCount returns how many requests are tracked in the window.
func (r *RateLimiter) CurrentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(time.Now())
	return len(r.stamps)
}

// Reset drops all tracked requests.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stamps = nil
}

// prune drops stamps older than the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.stamps) && !r.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.stamps = append([]time.Time(nil), r.stamps[i:]...)
	}
}
