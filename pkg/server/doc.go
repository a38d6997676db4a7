// Package server provides the diagnostics HTTP server for the Sluice daemon.
//
// This package exposes the daemon's operational surface (metrics, health
// probes, provider state, build information) and manages server lifecycle
// including start and graceful shutdown. Governed JSON-RPC traffic never
// passes through this server; it is observation only.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "helios-hq/sluice/pkg/config"
//	    "helios-hq/sluice/pkg/governor"
//	    "helios-hq/sluice/pkg/server"
//	)
//
//	// Load configuration
//	cfg := config.GetConfig()
//
//	// Create the governor
//	gov, err := governor.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create and start the diagnostics server
//	srv := server.New(cfg.Telemetry.Metrics, gov)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until the context is cancelled or the listener fails, so
// daemons typically run it in a goroutine and collect the error on exit.
//
// # Graceful Shutdown
//
// Cancelling the context passed to Start triggers graceful shutdown. It can
// also be triggered programmatically:
//
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for in-flight requests to complete (up to shutdown timeout)
//  3. Forces connection closure if the timeout is exceeded
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - GET /metrics - Prometheus metrics (path configurable)
//   - GET /healthz - Liveness probe (always returns 200)
//   - GET /readyz - Readiness probe (checks providers and cache)
//   - GET /providers - Per-provider admission and circuit state
//   - GET /version - Build information
//
// # Readiness Checks
//
// Readiness aggregates named checks registered at construction:
//
//   - providers: fails when no providers are configured or every provider's
//     circuit breaker is open
//   - cache: fails when the response cache backend cannot be read (only
//     registered when a cache is attached via WithCache)
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
