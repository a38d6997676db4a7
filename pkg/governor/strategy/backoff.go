package strategy

import (
	"math/rand"
	"time"
)

// Backoff delays admissions after failures: while the failure streak is
// non-empty, requests inside the computed backoff delay are rejected. A
// provider that keeps failing is probed at exponentially growing intervals;
// one success clears the streak and restores free admission.
type Backoff struct {
	initialDelay time.Duration
	factor       float64
	jitter       float64
	maxDelay     time.Duration

	failures    int
	lastRequest time.Time
	rng         func() float64
}

// NewBackoff creates a Backoff strategy. jitter is a fraction in [0, 1]
// spreading the delay symmetrically to avoid synchronized retry storms.
func NewBackoff(initialDelay time.Duration, factor, jitter float64, maxDelay time.Duration) *Backoff {
	return &Backoff{
		initialDelay: initialDelay,
		factor:       factor,
		jitter:       jitter,
		maxDelay:     maxDelay,
		rng:          rand.Float64,
	}
}

// Name returns the configuration name of the strategy.
func (b *Backoff) Name() string { return NameBackoff }

// Admit rejects while the failure streak is active and the backoff delay
// since the last request has not yet elapsed.
func (b *Backoff) Admit(now time.Time) bool {
	if b.failures > 0 && !b.lastRequest.IsZero() {
		delay := Delay(b.initialDelay, b.factor, b.jitter, b.maxDelay, b.failures, b.rng)
		if now.Sub(b.lastRequest) < delay {
			return false
		}
	}

	b.lastRequest = now
	return true
}

// RecordSuccess clears the failure streak.
func (b *Backoff) RecordSuccess(now time.Time) {
	b.failures = 0
}

// RecordFailure extends the failure streak, lengthening the next delay.
func (b *Backoff) RecordFailure(now time.Time) {
	b.failures++
}

// Snapshot returns the failure streak and last request time.
func (b *Backoff) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Strategy:            NameBackoff,
		LastRequest:         b.lastRequest,
		ConsecutiveFailures: b.failures,
	}
}

// Delay computes the backoff delay for a 1-based attempt (equivalently, a
// consecutive failure count):
//
//	base   = min(maxDelay, initialDelay * factor^(attempt-1))
//	result = base + u * jitter * base, u uniform in [-1, 1)
//
// The jitter term is applied after the cap, so the result may exceed
// maxDelay by at most jitter * maxDelay. The result is never negative.
// A nil rng disables jitter.
func Delay(initial time.Duration, factor, jitter float64, max time.Duration, attempt int, rng func() float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := float64(initial)
	for i := 1; i < attempt; i++ {
		base *= factor
		if base >= float64(max) {
			base = float64(max)
			break
		}
	}
	if base > float64(max) {
		base = float64(max)
	}

	d := base
	if jitter > 0 && rng != nil {
		d += (2*rng() - 1) * jitter * base
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
