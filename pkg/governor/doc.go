// Package governor decides whether outbound JSON-RPC requests may be sent
// to a provider right now, based on per-provider rate limits, circuit
// breaker state, and an optional response cache.
//
// # Overview
//
// The Governor is the coordination point the rest of the application talks
// to. It owns:
//
//   - A state Tracker holding one admission strategy and one circuit
//     breaker per configured provider
//   - An optional response cache consulted before spending rate budget
//   - Prometheus collectors for admissions, denials, outcomes, and cache
//     activity
//
// Sub-packages:
//
//   - strategy: the pluggable admission algorithms (fixed, token bucket,
//     adaptive, exponential backoff)
//   - circuit: the consecutive-failure circuit breaker
//
// # Usage
//
//	cfg := config.MustGetConfig()
//	gov := governor.New(cfg, governor.WithMetrics(governor.NewMetrics(nil)))
//
//	d := gov.Admit(ctx, "helius", "getBalance", params)
//	switch {
//	case d.CacheHit():
//	    return d.Cached, nil
//	case d.Denied():
//	    return nil, fmt.Errorf("admission denied: %s", d.Reason)
//	}
//
//	// dispatch the request, then report how it went
//	gov.RecordOutcome(ctx, "helius", governor.Failure(resp.StatusCode))
//
// Providers absent from the configuration pass through ungoverned: Admit
// always allows and RecordOutcome is a no-op.
//
// # Thread Safety
//
// All Governor and Tracker methods are safe for concurrent use. State for
// different providers is guarded independently, so admission checks for
// one provider never block another.
package governor
