package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint derives the cache key for a provider call. The key is the
// hex-encoded SHA-256 of the provider name, the method name, and the
// canonicalized request parameters, so two requests that differ only in
// JSON object key order map to the same entry.
//
// params may be any JSON-marshalable value, including json.RawMessage.
// A nil params is valid and fingerprints as a call with no parameters.
func Fingerprint(provider, method string, params any) (string, error) {
	envelope := struct {
		Provider string          `json:"provider"`
		Method   string          `json:"method"`
		Params   json.RawMessage `json:"params,omitempty"`
	}{
		Provider: provider,
		Method:   method,
	}

	if params != nil {
		canonical, err := canonicalJSON(params)
		if err != nil {
			return "", fmt.Errorf("failed to canonicalize params: %w", err)
		}
		envelope.Params = canonical
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to encode fingerprint payload: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON renders v as JSON with object keys in sorted order at
// every nesting level. Array element order is preserved: JSON-RPC params
// are positional, so reordering them would conflate distinct calls.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	// Round-trip through any: encoding/json sorts map keys on marshal,
	// and UseNumber keeps the numeric text intact instead of forcing
	// everything through float64.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var normalized any
	if err := dec.Decode(&normalized); err != nil {
		return nil, err
	}

	return json.Marshal(normalized)
}
