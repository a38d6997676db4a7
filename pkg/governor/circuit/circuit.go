// Package circuit implements the consecutive-failure circuit breaker that
// guards each upstream provider.
//
// # State Machine
//
// A breaker is always in one of three states:
//
//   - Closed: normal operation, requests pass through to the admission
//     strategy.
//   - Open: the provider is deemed unhealthy, all requests are rejected
//     immediately.
//   - HalfOpen: a bounded number of trial requests are allowed through to
//     probe the provider.
//
// Transitions:
//
//   - Closed -> Open when consecutive failures reach the failure threshold.
//   - Open -> HalfOpen when the reset timeout has elapsed.
//   - HalfOpen -> Closed on the first successful trial request.
//   - HalfOpen -> Open on any failure, or when the trial budget is exhausted
//     without a success.
//
// # Thread Safety
//
// Breaker is NOT self-locking. The provider state tracker serializes all
// access per provider, so the breaker never sees concurrent calls.
package circuit

import "time"

// State identifies the breaker state.
type State int

const (
	// StateClosed allows requests through; the provider is healthy.
	StateClosed State = iota
	// StateOpen rejects all requests; the provider is deemed unhealthy.
	StateOpen
	// StateHalfOpen allows a bounded number of trial requests through.
	StateHalfOpen
)

// String returns the state name in metrics-label form.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Default breaker parameters, applied when Config fields are zero.
const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 30 * time.Second
	DefaultHalfOpenRequests = 1
)

// Config contains the breaker parameters.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before allowing
	// half-open trial requests.
	// Default: 30s
	ResetTimeout time.Duration

	// HalfOpenRequests is the number of trial requests allowed while
	// half-open.
	// Default: 1
	HalfOpenRequests int
}

// withDefaults returns a copy of cfg with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = DefaultResetTimeout
	}
	if c.HalfOpenRequests <= 0 {
		c.HalfOpenRequests = DefaultHalfOpenRequests
	}
	return c
}

// Breaker is the circuit breaker for a single provider.
type Breaker struct {
	cfg Config

	state          State
	failures       int
	openedAt       time.Time
	trialRemaining int
}

// New creates a Breaker in the Closed state.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg.withDefaults()}
}

// Allow reports whether a request may proceed at the given instant.
// It applies the Open -> HalfOpen transition when the reset timeout has
// elapsed, consumes one trial request while half-open, and re-opens the
// circuit when the trial budget is exhausted.
func (b *Breaker) Allow(now time.Time) bool {
	if b.state == StateOpen {
		if now.Sub(b.openedAt) < b.cfg.ResetTimeout {
			return false
		}
		b.state = StateHalfOpen
		b.trialRemaining = b.cfg.HalfOpenRequests
	}

	if b.state == StateHalfOpen {
		if b.trialRemaining <= 0 {
			// Trial budget spent without a success.
			b.state = StateOpen
			b.openedAt = now
			return false
		}
		b.trialRemaining--
		return true
	}

	return true
}

// RecordSuccess resets the failure streak and closes the circuit if a
// half-open trial succeeded.
func (b *Breaker) RecordSuccess() {
	b.failures = 0
	if b.state == StateHalfOpen {
		b.state = StateClosed
	}
}

// RecordFailure extends the failure streak and opens the circuit when the
// threshold is reached or a half-open trial fails.
func (b *Breaker) RecordFailure(now time.Time) {
	b.failures++

	switch b.state {
	case StateClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.state = StateOpen
			b.openedAt = now
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = now
	}
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	return b.failures
}

// Snapshot is a read-only view of the breaker for diagnostics.
type Snapshot struct {
	State               State
	ConsecutiveFailures int
	OpenedAt            time.Time
	TrialRemaining      int
}

// Snapshot returns a copy of the breaker's current state.
func (b *Breaker) Snapshot() Snapshot {
	return Snapshot{
		State:               b.state,
		ConsecutiveFailures: b.failures,
		OpenedAt:            b.openedAt,
		TrialRemaining:      b.trialRemaining,
	}
}
