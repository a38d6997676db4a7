package strategy

import "time"

// Strategy names as they appear in configuration.
const (
	NameFixed       = "fixed"
	NameTokenBucket = "token_bucket"
	NameAdaptive    = "adaptive"
	NameBackoff     = "exponential_backoff"
)

// Window is the rolling span over which per-minute request counts are
// measured.
const Window = time.Minute

// Strategy decides whether a provider may accept a request at a given
// instant. Admit may mutate internal counters; RecordSuccess and
// RecordFailure feed outcome bookkeeping back into the algorithm.
type Strategy interface {
	// Name returns the configuration name of the strategy.
	Name() string

	// Admit reports whether a request may proceed now, consuming
	// whatever budget the algorithm tracks.
	Admit(now time.Time) bool

	// RecordSuccess reports a successful upstream call.
	RecordSuccess(now time.Time)

	// RecordFailure reports a failed upstream call.
	RecordFailure(now time.Time)

	// Snapshot returns a read-only view of the strategy's counters for
	// diagnostics. Fields that do not apply to the strategy are zero.
	Snapshot(now time.Time) Snapshot
}

// Snapshot is a read-only view of a strategy's mutable state.
type Snapshot struct {
	// Strategy is the configuration name of the strategy.
	Strategy string

	// LastRequest is the time of the last admitted request.
	LastRequest time.Time

	// WindowCount is the number of requests admitted in the current
	// rolling window (fixed and adaptive).
	WindowCount int

	// Tokens is the current token balance (token bucket).
	Tokens float64

	// CurrentLimit is the adaptive ceiling (adaptive).
	CurrentLimit float64

	// SuccessesSinceAdjustment counts successes since the last limit
	// change (adaptive).
	SuccessesSinceAdjustment int

	// ConsecutiveFailures is the failure streak driving the delay
	// (backoff).
	ConsecutiveFailures int
}

// slidingWindow counts events over a rolling span using a timestamp queue
// pruned on read. Chosen over scheduled decrements so that tests can drive
// it with a fake clock and no timers leak when a provider is dropped.
type slidingWindow struct {
	span   time.Duration
	stamps []time.Time
}

func newSlidingWindow(span time.Duration) slidingWindow {
	return slidingWindow{span: span}
}

// prune discards timestamps older than the window span.
func (w *slidingWindow) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = w.stamps[:copy(w.stamps, w.stamps[i:])]
	}
}

// count returns the number of events inside the window.
func (w *slidingWindow) count(now time.Time) int {
	w.prune(now)
	return len(w.stamps)
}

// add records an event at the given instant.
func (w *slidingWindow) add(now time.Time) {
	w.stamps = append(w.stamps, now)
}
