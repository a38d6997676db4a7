// Package telemetry groups the observability support for Sluice.
//
// # Components
//
//   - logging: structured slog setup with credential masking for provider
//     endpoint URLs and context-aware request correlation
//   - health: liveness and readiness checking backing the diagnostics
//     server's /healthz and /readyz endpoints
//
// Admission metrics live next to the components that produce them (see
// pkg/governor and pkg/rpc), and the diagnostics server in pkg/server
// gathers them onto the Prometheus scrape endpoint.
package telemetry
