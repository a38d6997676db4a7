// Package server provides the diagnostics HTTP server for the Sluice daemon.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"helios-hq/sluice/pkg/cache"
	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor"
	"helios-hq/sluice/pkg/governor/circuit"
	"helios-hq/sluice/pkg/telemetry/health"
)

// shutdownTimeout bounds graceful shutdown once it begins.
const shutdownTimeout = 10 * time.Second

// Server exposes the daemon's operational surface over HTTP: Prometheus
// metrics, liveness and readiness probes, provider snapshots, and build
// information. It serves diagnostics only; governed JSON-RPC traffic
// never passes through it.
type Server struct {
	addr        string
	metricsPath string

	gov      *governor.Governor
	cache    *cache.Cache
	gatherer prometheus.Gatherer
	checker  *health.Checker
	logger   *slog.Logger

	version   string
	commit    string
	buildDate string

	mu           sync.RWMutex
	httpServer   *http.Server
	listener     net.Listener
	isRunning    bool
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the Prometheus gatherer backing the metrics endpoint.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithCache registers the response cache for readiness checking.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVersion sets the build information served at /version.
func WithVersion(version, commit, buildDate string) Option {
	return func(s *Server) {
		s.version = version
		s.commit = commit
		s.buildDate = buildDate
	}
}

// New creates a diagnostics server for the given governor. The metrics
// listen address and path come from the telemetry configuration.
func New(cfg config.MetricsConfig, gov *governor.Governor, opts ...Option) *Server {
	s := &Server{
		addr:        cfg.ListenAddress,
		metricsPath: cfg.Path,
		gov:         gov,
		gatherer:    prometheus.DefaultGatherer,
		logger:      slog.Default(),
		version:     "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metricsPath == "" {
		s.metricsPath = "/metrics"
	}
	s.logger = s.logger.With("component", "server")

	s.checker = health.New(0)
	s.checker.RegisterCheck("providers", providersCheck(gov))
	if s.cache != nil {
		s.checker.RegisterCheck("cache", cacheCheck(s.cache))
	}

	return s
}

// Start listens on the configured address and blocks until the context
// is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.isRunning = true
	s.mu.Unlock()

	s.logger.Info("diagnostics server listening",
		"address", ln.Addr().String(),
		"metrics_path", s.metricsPath,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, stopping diagnostics server")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		srv := s.httpServer
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("diagnostics server stopped")
	})

	return shutdownErr
}

// Addr returns the bound listen address. Before Start it returns the
// configured address; after, the concrete one (useful with port 0).
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(s.metricsPath, promhttp.HandlerFor(
		s.gatherer,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	))

	mux.HandleFunc("/healthz", s.checker.LivenessHandler())
	mux.HandleFunc("/readyz", s.checker.ReadinessHandler())
	mux.HandleFunc("/version", health.VersionHandler(s.version, s.commit, s.buildDate))
	mux.HandleFunc("/providers", s.handleProviders)

	return mux
}

// providerView is the JSON shape served at /providers. Strategy fields
// that do not apply to a provider's strategy are omitted.
type providerView struct {
	Provider     string  `json:"provider"`
	Strategy     string  `json:"strategy"`
	LastRequest  string  `json:"last_request,omitempty"`
	WindowCount  int     `json:"window_count,omitempty"`
	Tokens       float64 `json:"tokens,omitempty"`
	CurrentLimit float64 `json:"current_limit,omitempty"`

	Circuit circuitView `json:"circuit"`
}

type circuitView struct {
	State               string `json:"state"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	OpenedAt            string `json:"opened_at,omitempty"`
	TrialRemaining      int    `json:"trial_remaining,omitempty"`
}

// handleProviders serves the per-provider governor state, sorted by
// provider name.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshots := s.gov.Snapshots()
	views := make([]providerView, 0, len(snapshots))
	for _, snap := range snapshots {
		views = append(views, viewOf(snap))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(views)
	}
}

func viewOf(snap governor.ProviderSnapshot) providerView {
	return providerView{
		Provider:     snap.Provider,
		Strategy:     snap.Strategy.Strategy,
		LastRequest:  formatTime(snap.Strategy.LastRequest),
		WindowCount:  snap.Strategy.WindowCount,
		Tokens:       snap.Strategy.Tokens,
		CurrentLimit: snap.Strategy.CurrentLimit,
		Circuit: circuitView{
			State:               snap.Circuit.State.String(),
			ConsecutiveFailures: snap.Circuit.ConsecutiveFailures,
			OpenedAt:            formatTime(snap.Circuit.OpenedAt),
			TrialRemaining:      snap.Circuit.TrialRemaining,
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// providersCheck reports unhealthy when no providers are configured or
// every provider's circuit is open, meaning the daemon cannot usefully
// serve a single call.
func providersCheck(gov *governor.Governor) health.CheckFunc {
	return func(ctx context.Context) error {
		snapshots := gov.Snapshots()
		if len(snapshots) == 0 {
			return errors.New("no providers configured")
		}

		open := 0
		for _, snap := range snapshots {
			if snap.Circuit.State == circuit.StateOpen {
				open++
			}
		}
		if open == len(snapshots) {
			return errors.New("all provider circuits open")
		}
		return nil
	}
}

// cacheCheck reports unhealthy when the cache backend cannot be read,
// which for the sqlite backend means the database file is gone or locked.
func cacheCheck(c *cache.Cache) health.CheckFunc {
	return func(ctx context.Context) error {
		_, err := c.Len(ctx)
		return err
	}
}
