// Package strategy implements the pluggable admission algorithms that decide
// whether a provider may accept a request right now.
//
// # Overview
//
// Four strategies are available, selected per provider at configuration load
// time:
//
//   - Fixed: minimum spacing between requests plus a rolling per-minute cap.
//   - TokenBucket: continuous-refill token bucket with burst capacity.
//   - Adaptive: rolling per-minute cap whose ceiling grows on sustained
//     success and shrinks multiplicatively on failure (AIMD).
//   - Backoff: exponential backoff with jitter keyed to the consecutive
//     failure streak.
//
// # Usage
//
//	s := strategy.NewTokenBucket(5, 1, 5, clk.Now())
//	if s.Admit(clk.Now()) {
//	    // dispatch the request, then report the outcome
//	    s.RecordSuccess(clk.Now())
//	}
//
// # Thread Safety
//
// Strategies are NOT self-locking. Each instance belongs to exactly one
// provider entry in the state tracker, which serializes all access.
package strategy
