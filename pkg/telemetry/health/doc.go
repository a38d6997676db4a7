// Package health provides health check endpoints for the Sluice daemon.
//
// # Overview
//
// The health package implements liveness and readiness probes for
// orchestration systems, along with a version information endpoint. It
// provides a small framework for checking the health of daemon components.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	// Register component checks
//	checker.RegisterCheck("cache", func(ctx context.Context) error {
//	    _, err := responseCache.Len(ctx)
//	    return err
//	})
//
//	// Add HTTP handlers
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//	mux.HandleFunc("/version", health.VersionHandler("1.0.0", "abc123", "2026-08-20"))
//
// # Liveness vs Readiness
//
// The liveness probe (/healthz) only reports that the process is alive;
// it never runs component checks. The readiness probe (/readyz) runs
// every registered check concurrently, each bounded by the checker's
// timeout, and reports 503 when any component is unhealthy.
//
// # Component Health Checks
//
// The daemon registers:
//   - cache: the response cache backend is reachable
//   - providers: at least one provider circuit is not open
package health
