package strategy

import "time"

// TokenBucket implements the continuous-refill token bucket.
//
// Tokens accrue at refillRate per second up to the bucket size, so bursts up
// to the bucket size are allowed while the long-run rate converges on the
// refill rate. Fractional tokens are kept so that sub-second refill
// intervals accumulate instead of rounding away.
type TokenBucket struct {
	size       float64
	refillRate float64

	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket creates a token bucket strategy. The initial balance is
// clamped into [0, size]; lastRefill starts at the given instant so no
// refill is credited before the first request.
func NewTokenBucket(size, refillRate, initial float64, now time.Time) *TokenBucket {
	if initial < 0 {
		initial = 0
	}
	if initial > size {
		initial = size
	}
	return &TokenBucket{
		size:       size,
		refillRate: refillRate,
		tokens:     initial,
		lastRefill: now,
	}
}

// Name returns the configuration name of the strategy.
func (tb *TokenBucket) Name() string { return NameTokenBucket }

// Admit refills the bucket for the elapsed time, then consumes one token.
// It rejects when less than one whole token is available.
func (tb *TokenBucket) Admit(now time.Time) bool {
	tb.refill(now)

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// RecordSuccess is a no-op; the bucket refills on elapsed time alone.
func (tb *TokenBucket) RecordSuccess(now time.Time) {}

// RecordFailure is a no-op; the bucket refills on elapsed time alone.
func (tb *TokenBucket) RecordFailure(now time.Time) {}

// Snapshot returns the refilled token balance.
func (tb *TokenBucket) Snapshot(now time.Time) Snapshot {
	tb.refill(now)
	return Snapshot{
		Strategy: NameTokenBucket,
		Tokens:   tb.tokens,
	}
}

// refill credits tokens for the time elapsed since the last refill,
// clamping to the bucket size. Tokens never go negative and never exceed
// the size.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}

	tb.tokens += elapsed.Seconds() * tb.refillRate
	if tb.tokens > tb.size {
		tb.tokens = tb.size
	}
	tb.lastRefill = now
}
