package retry

import (
	"context"
	"testing"
	"time"
)

func TestTimerNextDelayDoublesAndCaps(t *testing.T) {
	tm := New(10*time.Millisecond, 3)
	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		80 * time.Millisecond,
		80 * time.Millisecond, // capped at minDelay << maxIncrease
	}
	for i, w := range want {
		got := tm.NextDelay()
		if got != w {
			t.Fatalf("step %d: got %v, want %v", i, got, w)
		}
		if err := tm.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
}

func TestTimerResetMakesNextWaitImmediate(t *testing.T) {
	tm := New(5*time.Millisecond, 2)
	if err := tm.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := tm.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if tm.NextDelay() == 5*time.Millisecond {
		t.Fatal("expected the delay to have grown past minDelay before Reset")
	}
	tm.Reset()
	if got := tm.NextDelay(); got != 0 {
		t.Fatalf("after Reset, NextDelay = %v, want an immediate retry", got)
	}
	start := time.Now()
	if err := tm.Wait(context.Background()); err != nil {
		t.Fatalf("Wait after Reset: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Millisecond {
		t.Fatalf("Wait after Reset slept %v, want an immediate return", elapsed)
	}
	if got := tm.NextDelay(); got != 5*time.Millisecond {
		t.Fatalf("after the immediate retry, NextDelay = %v, want minDelay 5ms", got)
	}
}

func TestTimerWaitHonorsContextCancellation(t *testing.T) {
	tm := New(time.Hour, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tm.Wait(ctx); err == nil {
		t.Fatal("expected Wait to return an error on an already-cancelled context")
	}
}
