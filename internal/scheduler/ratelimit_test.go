package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		ok, wait := limiter.CanProceed()
		if !ok || wait != 0 {
			t.Fatalf("request %d: CanProceed() = (%v, %v), want (true, 0)", i, ok, wait)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Second)

	limiter.CanProceed()
	limiter.CanProceed()

	ok, wait := limiter.CanProceed()
	if ok {
		t.Fatal("third request should be blocked")
	}
	if wait <= 0 || wait > time.Second {
		t.Errorf("wait = %v, want within (0, 1s]", wait)
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRateLimiter(2, 50*time.Millisecond)

	limiter.CanProceed()
	limiter.CanProceed()
	if ok, _ := limiter.CanProceed(); ok {
		t.Fatal("limit not enforced")
	}

	time.Sleep(60 * time.Millisecond)

	if ok, _ := limiter.CanProceed(); !ok {
		t.Error("request should be allowed after window expiry")
	}
}

func TestRateLimiterWaitBlocks(t *testing.T) {
	limiter := NewRateLimiter(1, 50*time.Millisecond)
	limiter.CanProceed()

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Wait() returned after %v, expected it to block for the window", elapsed)
	}
}

func TestRateLimiterWaitCancellation(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)
	limiter.CanProceed()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("Wait() should return ctx error when cancelled")
	}
}

func TestRateLimiterUnlimited(t *testing.T) {
	limiter := NewRateLimiter(0, time.Second)

	for i := 0; i < 100; i++ {
		if ok, _ := limiter.CanProceed(); !ok {
			t.Fatal("unlimited limiter should always proceed")
		}
	}
}

func TestRateLimiterCountAndReset(t *testing.T) {
	limiter := NewRateLimiter(5, time.Second)

	limiter.CanProceed()
	limiter.CanProceed()
	limiter.CanProceed()
	if got := limiter.CurrentCount(); got != 3 {
		t.Errorf("CurrentCount() = %d, want 3", got)
	}

	limiter.Reset()
	if got := limiter.CurrentCount(); got != 0 {
		t.Errorf("CurrentCount() after Reset() = %d, want 0", got)
	}
}
