package admission

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(2) // burst capacity 2
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Limit(context.Background()); err != nil {
		t.Fatalf("first token: %v", err)
	}
	if err := rl.Limit(context.Background()); err != nil {
		t.Fatalf("second token (within burst): %v", err)
	}
	// The bucket should now be empty; a short-deadline context should
	// time out waiting for the next token to refill.
	if err := rl.Limit(ctx); err == nil {
		t.Fatal("expected Limit to block past a short deadline once burst is exhausted")
	}
}

func TestThrottleAllowsBelowSampleSize(t *testing.T) {
	th := NewThrottle(time.Minute, 10, 0.01, time.Second)
	for i := 0; i < 5; i++ {
		th.Throttled()
	}
	if !th.AllowRequest() {
		t.Fatal("expected AllowRequest to stay permissive below sampleSize observations")
	}
}

func TestThrottleDeniesAboveThreshold(t *testing.T) {
	th := NewThrottle(time.Minute, 10, 0.01, time.Second)
	for i := 0; i < 10; i++ {
		th.Throttled()
	}
	if th.AllowRequest() {
		t.Fatal("expected AllowRequest to deny once the throttled fraction exceeds denyRequestAt")
	}
}

func TestThrottleAllowsWhenFractionBelowThreshold(t *testing.T) {
	th := NewThrottle(time.Minute, 10, 0.5, time.Second)
	th.Throttled()
	for i := 0; i < 9; i++ {
		th.NotThrottled()
	}
	if !th.AllowRequest() {
		t.Fatal("expected AllowRequest to allow a 10% throttled fraction under a 50% threshold")
	}
}

func TestThrottleWindowRolls(t *testing.T) {
	th := NewThrottle(10*time.Millisecond, 1, 0.01, time.Second)
	for i := 0; i < 5; i++ {
		th.Throttled()
	}
	if th.AllowRequest() {
		t.Fatal("expected denial immediately after saturating the window with throttled responses")
	}
	time.Sleep(20 * time.Millisecond)
	if !th.AllowRequest() {
		t.Fatal("expected the sliding window to roll over and reset to permissive")
	}
}

func TestThrottleDelayReturnsConfiguredWait(t *testing.T) {
	th := NewThrottle(time.Minute, 10, 0.01, 250*time.Millisecond)
	if th.ThrottleDelay() != 250*time.Millisecond {
		t.Fatalf("got %v, want 250ms", th.ThrottleDelay())
	}
}
