package strategy

import "time"

// Fixed enforces a minimum spacing between requests and a rolling
// per-minute request cap. It is the simplest strategy and the default for
// providers that publish a flat requests-per-minute ceiling.
type Fixed struct {
	minInterval  time.Duration
	maxPerWindow int

	lastRequest time.Time
	window      slidingWindow
}

// NewFixed creates a Fixed strategy. A non-positive maxPerWindow disables
// the per-minute cap; a non-positive minInterval disables request spacing.
func NewFixed(minInterval time.Duration, maxPerWindow int) *Fixed {
	return &Fixed{
		minInterval:  minInterval,
		maxPerWindow: maxPerWindow,
		window:       newSlidingWindow(Window),
	}
}

// Name returns the configuration name of the strategy.
func (f *Fixed) Name() string { return NameFixed }

// Admit rejects when the request arrives inside the minimum interval since
// the last admitted request, or when the rolling window is full.
func (f *Fixed) Admit(now time.Time) bool {
	if f.minInterval > 0 && !f.lastRequest.IsZero() && now.Sub(f.lastRequest) < f.minInterval {
		return false
	}
	if f.maxPerWindow > 0 && f.window.count(now) >= f.maxPerWindow {
		return false
	}

	f.lastRequest = now
	f.window.add(now)
	return true
}

// RecordSuccess is a no-op; Fixed does not react to outcomes.
func (f *Fixed) RecordSuccess(now time.Time) {}

// RecordFailure is a no-op; Fixed does not react to outcomes.
func (f *Fixed) RecordFailure(now time.Time) {}

// Snapshot returns the current spacing and window counters.
func (f *Fixed) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Strategy:    NameFixed,
		LastRequest: f.lastRequest,
		WindowCount: f.window.count(now),
	}
}
