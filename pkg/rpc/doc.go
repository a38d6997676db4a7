// Package rpc provides a JSON-RPC 2.0 client whose every call passes
// through the request governor.
//
// The flow for one call is: admit (which may answer from the response
// cache), dispatch over HTTP, record the outcome, and cache the response
// when the provider is cache-eligible. Rate limit denials are retried
// after the governor's advised delay within the attempt budget; an open
// circuit fails fast so Call can rotate to the next provider. Fallback
// endpoints of a provider are walked in order before the provider is
// given up on.
//
// The client owns the transport concerns the governor deliberately does
// not: HTTP exchange, timeouts, endpoint rotation, and the mapping of
// transport results onto governor outcomes.
package rpc
