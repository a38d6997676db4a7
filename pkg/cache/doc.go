// Package cache stores provider responses keyed by a deterministic
// fingerprint of the call, so identical requests inside an entry's
// lifetime are served locally instead of consuming upstream quota.
//
// # Keys
//
// Fingerprint hashes the provider name, method, and canonicalized
// request parameters. Canonicalization sorts JSON object keys at every
// nesting level while preserving array order, so requests that differ
// only in key order share an entry.
//
// # Expiry
//
// Expiry is lazy. Cache.Get and Cache.Exists compare entries against
// the configured clock on every read and treat expired entries as
// absent, removing them as a side effect. The optional Sweeper reclaims
// entries in bulk on a cron schedule for keys that are never read again.
//
// # Backends
//
// Two Store implementations are provided: MemoryStore for
// single-process use, and SQLiteStore where cached responses must
// survive restarts. Stores hold entries verbatim; expiry decisions are
// made by the Cache wrapper so that all backends age identically.
package cache
