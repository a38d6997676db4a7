package strategy

import "time"

// AdaptiveParams configures the Adaptive strategy.
type AdaptiveParams struct {
	// SuccessThreshold is the number of consecutive successes required
	// before the limit is raised.
	SuccessThreshold int

	// IncreaseFactor is the fractional raise applied at the threshold
	// (0.1 raises the limit by 10%).
	IncreaseFactor float64

	// DecreaseFactor multiplies the limit on every failure (0.5 halves
	// it). Must be below 1.
	DecreaseFactor float64

	// MinLimit and MaxLimit bound the ceiling.
	MinLimit float64
	MaxLimit float64

	// InitialLimit seeds the ceiling; it is clamped into
	// [MinLimit, MaxLimit]. Zero means start at MaxLimit.
	InitialLimit float64
}

// Adaptive enforces a rolling per-minute cap whose ceiling adjusts to
// observed outcomes: sustained success raises it gradually, any failure
// cuts it multiplicatively. The asymmetry suits providers that punish
// bursts harshly but recover slowly.
type Adaptive struct {
	successThreshold int
	increaseFactor   float64
	decreaseFactor   float64
	minLimit         float64
	maxLimit         float64

	currentLimit float64
	successes    int
	lastRequest  time.Time
	window       slidingWindow
}

// NewAdaptive creates an Adaptive strategy.
func NewAdaptive(p AdaptiveParams) *Adaptive {
	limit := p.InitialLimit
	if limit == 0 {
		limit = p.MaxLimit
	}
	if limit < p.MinLimit {
		limit = p.MinLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	return &Adaptive{
		successThreshold: p.SuccessThreshold,
		increaseFactor:   p.IncreaseFactor,
		decreaseFactor:   p.DecreaseFactor,
		minLimit:         p.MinLimit,
		maxLimit:         p.MaxLimit,
		currentLimit:     limit,
		window:           newSlidingWindow(Window),
	}
}

// Name returns the configuration name of the strategy.
func (a *Adaptive) Name() string { return NameAdaptive }

// Admit rejects when the rolling window has reached the current ceiling.
// The ceiling itself only moves in RecordSuccess and RecordFailure.
func (a *Adaptive) Admit(now time.Time) bool {
	if a.window.count(now) >= int(a.currentLimit) {
		return false
	}

	a.lastRequest = now
	a.window.add(now)
	return true
}

// RecordSuccess counts toward the next raise. Once the success threshold is
// reached the ceiling grows by the increase factor, clamped to the maximum,
// and the counter restarts.
func (a *Adaptive) RecordSuccess(now time.Time) {
	a.successes++
	if a.successes < a.successThreshold {
		return
	}

	a.currentLimit *= 1 + a.increaseFactor
	if a.currentLimit > a.maxLimit {
		a.currentLimit = a.maxLimit
	}
	a.successes = 0
}

// RecordFailure cuts the ceiling immediately, clamped to the minimum, and
// restarts the success counter so a stale streak cannot trigger a raise
// right after the cut.
func (a *Adaptive) RecordFailure(now time.Time) {
	a.currentLimit *= a.decreaseFactor
	if a.currentLimit < a.minLimit {
		a.currentLimit = a.minLimit
	}
	a.successes = 0
}

// Snapshot returns the window count, current ceiling, and success streak.
func (a *Adaptive) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Strategy:                 NameAdaptive,
		LastRequest:              a.lastRequest,
		WindowCount:              a.window.count(now),
		CurrentLimit:             a.currentLimit,
		SuccessesSinceAdjustment: a.successes,
	}
}
