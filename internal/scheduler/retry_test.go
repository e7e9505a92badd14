package scheduler

import (
	"testing"
	"time"
)

func TestRetryPolicyDelayGrowth(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    1 * time.Second,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second}, // capped
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := policy.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicyJitterBounds(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		Jitter:      0.5,
	}

	for i := 0; i < 100; i++ {
		got := policy.Delay(1)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("Delay(1) with 50%% jitter = %v, want within [50ms, 150ms]", got)
		}
	}
}

func TestRetryPolicyZeroAttemptClamped(t *testing.T) {
	policy := RetryPolicy{BaseDelay: 100 * time.Millisecond}

	if got := policy.Delay(0); got != 100*time.Millisecond {
		t.Errorf("Delay(0) = %v, want base delay", got)
	}
}
