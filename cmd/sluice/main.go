// Sluice is a request governor for Solana JSON-RPC providers.
//
// It mediates outbound calls to rate limited RPC endpoints, providing:
//   - Pluggable admission strategies (fixed, token bucket, adaptive,
//     exponential backoff)
//   - Per-provider circuit breaking with half-open trials
//   - Response caching keyed by request fingerprint
//   - Endpoint failover and governed retries
//   - Prometheus metrics and health endpoints
//
// Usage:
//
//	# Start the daemon with default configuration
//	sluice run
//
//	# Start with a custom configuration file
//	sluice run --config /path/to/config.yaml
//
//	# Check provider health once and exit
//	sluice probe
//
//	# Validate a configuration file
//	sluice validate --config config.yaml
//
//	# Benchmark the admission path offline
//	sluice bench --provider helius --requests 100000
//
//	# Show version information
//	sluice version
//
// For complete documentation, see: https://github.com/helios-hq/sluice
package main

func main() {
	Execute()
}
