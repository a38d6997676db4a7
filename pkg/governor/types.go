package governor

import "net/http"

// DenyReason explains why an admission was rejected.
type DenyReason string

const (
	// ReasonRateLimited means the provider's admission strategy refused
	// the request.
	ReasonRateLimited DenyReason = "rate_limited"

	// ReasonCircuitOpen means the provider's circuit breaker is open.
	ReasonCircuitOpen DenyReason = "circuit_open"
)

// Decision is the result of an admission check for one request.
type Decision struct {
	// Provider is the provider the decision applies to.
	Provider string

	// Allowed reports whether the request may proceed.
	Allowed bool

	// Reason is set when the request was denied.
	Reason DenyReason

	// Cached holds the response body when the request was served from the
	// response cache. A cache hit consumes no rate limit budget.
	Cached []byte
}

// CacheHit reports whether the decision carries a cached response.
func (d Decision) CacheHit() bool { return d.Cached != nil }

// Denied reports whether the request was rejected.
func (d Decision) Denied() bool { return !d.Allowed }

// Verdict is the tracker's ruling on one admission attempt.
type Verdict struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Reason is set when the request was refused.
	Reason DenyReason
}

// StatusTransport marks an Outcome whose failure happened before any HTTP
// status was received (connection refused, timeout, DNS).
const StatusTransport = 0

// Outcome describes the result of one upstream call.
type Outcome struct {
	// Success reports whether the call succeeded.
	Success bool

	// StatusCode is the HTTP status of the response, or StatusTransport
	// for transport-level failures.
	StatusCode int
}

// Success returns a successful Outcome.
func Success() Outcome { return Outcome{Success: true} }

// Failure returns a failed Outcome with the given HTTP status code. Use
// StatusTransport when no response was received.
func Failure(statusCode int) Outcome { return Outcome{StatusCode: statusCode} }

// RateLimited reports whether the upstream rejected the call with 429.
func (o Outcome) RateLimited() bool { return o.StatusCode == http.StatusTooManyRequests }
