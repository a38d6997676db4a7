package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"helios-hq/sluice/pkg/cli"
	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor"
	"helios-hq/sluice/pkg/rpc"
	"helios-hq/sluice/pkg/telemetry/logging"
)

var probeFlags struct {
	provider string
	method   string
	timeout  time.Duration
	format   string
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe provider health once and exit",
	Long: `Probe every configured provider with a cheap RPC call and report the
results.

Probes go through the full admission pipeline, so a provider whose
circuit is open or whose rate budget is exhausted reports as unhealthy
even when the upstream itself is fine. The exit status is non-zero when
no provider answers.

Examples:
  # Probe all configured providers
  sluice probe

  # Probe a single provider
  sluice probe --provider helius

  # Use a different probe method
  sluice probe --method getSlot

  # JSON output for scripting
  sluice probe --format json`,
	RunE: probeProviders,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeFlags.provider, "provider", "p", "", "probe only this provider")
	probeCmd.Flags().StringVarP(&probeFlags.method, "method", "m", rpc.MethodGetHealth, "RPC method to probe with")
	probeCmd.Flags().DurationVar(&probeFlags.timeout, "timeout", 30*time.Second, "overall probe deadline")
	probeCmd.Flags().StringVar(&probeFlags.format, "format", "text", "output format: text, json")
}

// probeResult is the outcome of probing one provider.
type probeResult struct {
	Provider string
	Healthy  bool
	Latency  time.Duration
	Circuit  string
	Err      error
}

func probeProviders(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(probeFlags.format)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(config.LoggingConfig{Level: level, Format: logging.FormatText}, os.Stderr)
	if err != nil {
		return err
	}

	gov := governor.New(cfg, governor.WithLogger(logger))
	client := rpc.NewClient(cfg, gov, rpc.WithLogger(logger))

	providers := gov.Providers()
	if probeFlags.provider != "" {
		if _, ok := cfg.Provider(probeFlags.provider); !ok {
			return fmt.Errorf("provider %q is not configured", probeFlags.provider)
		}
		providers = []string{probeFlags.provider}
	}
	if len(providers) == 0 {
		return fmt.Errorf("no providers configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeFlags.timeout)
	defer cancel()

	runID := uuid.NewString()
	results := probeAll(ctx, client, gov, probeFlags.method, providers)

	if format == cli.FormatJSON {
		return outputProbeJSON(runID, probeFlags.method, results)
	}
	return outputProbeText(runID, probeFlags.method, results)
}

// probeAll issues one governed probe call per provider and captures the
// circuit state observed after the outcome was recorded. The daemon's
// scheduled probe shares this path.
func probeAll(ctx context.Context, client *rpc.Client, gov *governor.Governor, method string, providers []string) []probeResult {
	results := make([]probeResult, 0, len(providers))
	for _, name := range providers {
		start := time.Now()
		_, err := client.CallProvider(ctx, name, method, nil)
		r := probeResult{
			Provider: name,
			Healthy:  err == nil,
			Latency:  time.Since(start),
			Err:      err,
		}
		if snap, ok := gov.Snapshot(name); ok {
			r.Circuit = snap.Circuit.State.String()
		}
		results = append(results, r)
	}
	return results
}

func healthyCount(results []probeResult) int {
	n := 0
	for _, r := range results {
		if r.Healthy {
			n++
		}
	}
	return n
}

func outputProbeText(runID, method string, results []probeResult) error {
	redactor := logging.NewRedactor()

	fmt.Printf("Probe run %s (method %s)\n\n", runID, method)
	for _, r := range results {
		if r.Healthy {
			fmt.Printf("✓ %-12s ok      %6s  circuit %s\n",
				r.Provider, r.Latency.Round(time.Millisecond), r.Circuit)
			continue
		}
		fmt.Printf("✗ %-12s failed  %6s  circuit %s: %s\n",
			r.Provider, r.Latency.Round(time.Millisecond), r.Circuit,
			redactor.RedactString(r.Err.Error()))
	}

	healthy := healthyCount(results)
	fmt.Printf("\n%d/%d providers healthy\n", healthy, len(results))

	if healthy == 0 {
		return cli.NewCommandError("probe", fmt.Errorf("no provider healthy"))
	}
	return nil
}

// probeView is the JSON shape of a probe run.
type probeView struct {
	Run     string            `json:"run"`
	Method  string            `json:"method"`
	Healthy int               `json:"healthy"`
	Total   int               `json:"total"`
	Results []probeResultView `json:"results"`
}

type probeResultView struct {
	Provider  string  `json:"provider"`
	Healthy   bool    `json:"healthy"`
	LatencyMS float64 `json:"latency_ms"`
	Circuit   string  `json:"circuit,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func outputProbeJSON(runID, method string, results []probeResult) error {
	redactor := logging.NewRedactor()

	view := probeView{
		Run:     runID,
		Method:  method,
		Healthy: healthyCount(results),
		Total:   len(results),
		Results: make([]probeResultView, 0, len(results)),
	}
	for _, r := range results {
		rv := probeResultView{
			Provider:  r.Provider,
			Healthy:   r.Healthy,
			LatencyMS: float64(r.Latency.Microseconds()) / 1000.0,
			Circuit:   r.Circuit,
		}
		if r.Err != nil {
			rv.Error = redactor.RedactString(r.Err.Error())
		}
		view.Results = append(view.Results, rv)
	}

	if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, view); err != nil {
		return err
	}

	if view.Healthy == 0 {
		return cli.NewCommandError("probe", fmt.Errorf("no provider healthy"))
	}
	return nil
}
