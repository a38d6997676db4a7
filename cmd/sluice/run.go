package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"helios-hq/sluice/pkg/cache"
	"helios-hq/sluice/pkg/cli"
	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor"
	"helios-hq/sluice/pkg/rpc"
	"helios-hq/sluice/pkg/server"
	"helios-hq/sluice/pkg/telemetry/logging"
)

// probeRoundTimeout bounds one scheduled probe round across all providers.
const probeRoundTimeout = 15 * time.Second

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Sluice daemon",
	Long: `Start the Sluice daemon with the specified configuration.

The daemon keeps per-provider admission state warm for the lifetime of
the process: scheduled health probes feed circuit breakers and adaptive
limits while traffic is idle, the response cache is swept on a schedule,
and a diagnostics server exposes Prometheus metrics, health endpoints,
and live provider state. Configuration changes on disk are applied
without a restart.

Examples:
  # Start with default config
  sluice run

  # Start with custom config
  sluice run --config /etc/sluice/config.yaml

  # Override diagnostics listen address
  sluice run --listen 0.0.0.0:9090

  # Validate config without starting the daemon
  sluice run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override diagnostics listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", err)
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Telemetry.Metrics.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// Metrics registry shared by the governor, the client, and the
	// diagnostics server.
	registry := prometheus.NewRegistry()
	govMetrics := governor.NewMetrics(registry)
	rpcMetrics := rpc.NewMetrics(registry)

	// Response cache and its scheduled sweeper
	store, err := buildCacheStore(cfg.Cache)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	responseCache := cache.New(store, cache.WithLogger(logger))
	defer responseCache.Close()

	sweeper := cache.NewSweeper(responseCache, cfg.Cache.SweepSchedule, logger)
	if err := sweeper.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sweeper.Stop()
	fmt.Printf("✓ Response cache initialized (%s backend)\n", cfg.Cache.Backend)

	// Governor and governed client
	gov := governor.New(cfg,
		governor.WithCache(responseCache),
		governor.WithLogger(logger),
		governor.WithMetrics(govMetrics),
	)
	client := rpc.NewClient(cfg, gov,
		rpc.WithLogger(logger),
		rpc.WithMetrics(rpcMetrics),
	)
	fmt.Printf("✓ Governor initialized (%d providers)\n", len(gov.Providers()))

	// Scheduled health probes keep circuit and adaptive state tracking
	// provider health while traffic is idle.
	if cfg.Probe.Enabled {
		probeCron := cron.New()
		if _, err := probeCron.AddFunc(cfg.Probe.Schedule, func() {
			scheduledProbe(ctx, client, gov, cfg.Probe.Method, logger)
		}); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("invalid probe schedule %q: %w", cfg.Probe.Schedule, err))
		}
		probeCron.Start()
		defer func() { <-probeCron.Stop().Done() }()
		fmt.Printf("✓ Health probes scheduled (%s, method %s)\n", cfg.Probe.Schedule, cfg.Probe.Method)
	}

	// Config hot reload
	watcher, err := config.NewWatcher(cfgFile, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		go func() {
			if err := watcher.Watch(ctx, func(newCfg *config.Config) {
				config.SetConfig(newCfg)
				gov.ApplyConfig(newCfg)
				client.ApplyConfig(newCfg)
			}); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Println("✓ Config hot reload enabled")
	}

	// Diagnostics server
	var srv *server.Server
	serverErr := make(chan error, 1)
	if cfg.Telemetry.Metrics.Enabled {
		srv = server.New(cfg.Telemetry.Metrics, gov,
			server.WithGatherer(registry),
			server.WithCache(responseCache),
			server.WithLogger(logger),
			server.WithVersion(Version, GitCommit, BuildDate),
		)
		go func() { serverErr <- srv.Start(ctx) }()

		fmt.Println()
		fmt.Printf("✓ Diagnostics listening on %s\n", cfg.Telemetry.Metrics.ListenAddress)
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
		fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Telemetry.Metrics.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")
		if srv != nil {
			if err := <-serverErr; err != nil {
				return cli.NewCommandError("run", err)
			}
		}
	case err := <-serverErr:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
	}

	fmt.Println("✓ Sluice stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Sluice v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")
	fmt.Println()
}

// buildCacheStore constructs the configured cache backend.
func buildCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case config.CacheBackendSQLite:
		store, err := cache.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache at %s: %w", cfg.SQLitePath, err)
		}
		return store, nil
	case config.CacheBackendMemory, "":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// scheduledProbe runs one probe round and logs the results. Failures log
// at warn so an idle deployment still surfaces provider trouble.
func scheduledProbe(ctx context.Context, client *rpc.Client, gov *governor.Governor, method string, logger *slog.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, probeRoundTimeout)
	defer cancel()

	for _, r := range probeAll(probeCtx, client, gov, method, gov.Providers()) {
		if r.Healthy {
			logger.Debug("scheduled probe succeeded",
				"provider", r.Provider,
				"latency", r.Latency,
				"circuit", r.Circuit,
			)
			continue
		}
		logger.Warn("scheduled probe failed",
			"provider", r.Provider,
			"latency", r.Latency,
			"circuit", r.Circuit,
			"error", r.Err.Error(),
		)
	}
}
