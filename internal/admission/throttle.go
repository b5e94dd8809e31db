package admission

import (
	"sync"
	"time"
)

// Throttle tracks the fraction of recent submit responses that came back
// ESME_RTHROTTLED/ESME_RMSGQFUL over a sliding window, and tells the
// sender to back off once that fraction crosses DenyRequestAt.
type Throttle struct {
	mu             sync.Mutex
	samplingPeriod time.Duration
	sampleSize     int
	denyRequestAt  float64
	throttleWait   time.Duration

	windowStart time.Time
	throttled   int
	total       int
}

// NewThrottle builds a Throttle. samplingPeriod is the sliding window
// width; sampleSize is the minimum response count before the handler
// judges anything (below it, every request is allowed); denyRequestAt is
// the throttled-fraction threshold (e.g. 0.01 for 1%); throttleWait is
// how long the sender sleeps once denied before re-asking.
func NewThrottle(samplingPeriod time.Duration, sampleSize int, denyRequestAt float64, throttleWait time.Duration) *Throttle {
	return &Throttle{
		samplingPeriod: samplingPeriod,
		sampleSize:     sampleSize,
		denyRequestAt:  denyRequestAt,
		throttleWait:   throttleWait,
		windowStart:    time.Now(),
	}
}

func (t *Throttle) rollIfExpired(now time.Time) {
	if now.Sub(t.windowStart) >= t.samplingPeriod {
		t.throttled = 0
		t.total = 0
		t.windowStart = now
	}
}

// Throttled records a throttled response (ESME_RTHROTTLED/ESME_RMSGQFUL).
func (t *Throttle) Throttled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollIfExpired(time.Now())
	t.throttled++
	t.total++
}

// NotThrottled records a non-throttled response.
func (t *Throttle) NotThrottled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollIfExpired(time.Now())
	t.total++
}

// AllowRequest reports whether the sender may proceed. Below sampleSize
// observed responses in the current window, the handler is permissive.
func (t *Throttle) AllowRequest() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollIfExpired(time.Now())
	if t.total < t.sampleSize {
		return true
	}
	fraction := float64(t.throttled) / float64(t.total)
	return fraction <= t.denyRequestAt
}

// ThrottleDelay is how long the sender should sleep before re-asking
// AllowRequest after a denial.
func (t *Throttle) ThrottleDelay() time.Duration {
	return t.throttleWait
}
