package rpc

import (
	"errors"
	"fmt"
	"time"

	"helios-hq/sluice/pkg/governor"
)

// ErrNoProviders is returned by Call when the configuration names no
// providers to rotate through.
var ErrNoProviders = errors.New("no providers configured")

// ProviderError represents a failed HTTP exchange with a provider.
// StatusCode is zero when the failure happened below the HTTP layer.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// RPCError represents a JSON-RPC error object returned by a provider
// that answered the HTTP exchange. The provider is healthy; the request
// itself was rejected.
type RPCError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// Code is the JSON-RPC error code
	Code int

	// Message is the JSON-RPC error message
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("provider %q rpc error %d: %s", e.Provider, e.Code, e.Message)
}

// TimeoutError represents a request that exceeded the provider's
// configured timeout.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// DeniedError represents an admission denial that outlasted the retry
// budget. It never reaches the network.
type DeniedError struct {
	// Provider is the name of the provider the request was bound for
	Provider string

	// Reason is the governor's denial reason
	Reason governor.DenyReason
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("provider %q admission denied: %s", e.Provider, e.Reason)
}
