package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"helios-hq/sluice/pkg/cli"
	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor"
	"helios-hq/sluice/pkg/rpc"
	"helios-hq/sluice/pkg/telemetry/logging"
)

var benchFlags struct {
	provider    string
	requests    int
	concurrency int
	failureRate float64
	format      string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the admission path",
	Long: `Benchmark the admission path for one configured provider.

The bench command drives the admission pipeline offline: no RPC calls
leave the process. Each round trip is one admission decision plus one
simulated outcome, so the numbers cover strategy bookkeeping, circuit
accounting, and lock contention at the configured concurrency.

Metrics collected:
  - Admission throughput (admissions/sec)
  - Admit latency percentiles (p50, p95, p99, max)
  - Denial counts by reason

Examples:
  # Benchmark the token bucket path
  sluice bench --provider helius --requests 100000

  # Measure lock contention
  sluice bench --provider helius --concurrency 16

  # Exercise the circuit breaker path
  sluice bench --provider helius --failure-rate 0.2`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVarP(&benchFlags.provider, "provider", "p", "", "provider to benchmark (required)")
	benchCmd.Flags().IntVar(&benchFlags.requests, "requests", 100000, "number of admission attempts")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", 4, "concurrent workers")
	benchCmd.Flags().Float64Var(&benchFlags.failureRate, "failure-rate", 0, "fraction of outcomes recorded as failures")
	benchCmd.Flags().StringVar(&benchFlags.format, "format", "text", "output format: text, json")
}

func runBench(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(benchFlags.format)
	if err != nil {
		return err
	}
	if benchFlags.provider == "" {
		return fmt.Errorf("--provider must be specified")
	}
	if benchFlags.requests <= 0 {
		return fmt.Errorf("--requests must be positive")
	}
	if benchFlags.concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive")
	}
	if benchFlags.failureRate < 0 || benchFlags.failureRate > 1 {
		return fmt.Errorf("--failure-rate must be between 0 and 1")
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err)
	}
	if _, ok := cfg.Provider(benchFlags.provider); !ok {
		return fmt.Errorf("provider %q is not configured", benchFlags.provider)
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

	if format == cli.FormatText {
		fmt.Println("Sluice Bench")
		fmt.Println("============")
		fmt.Printf("Provider: %s\n", benchFlags.provider)
		fmt.Printf("Requests: %d\n", benchFlags.requests)
		fmt.Printf("Concurrency: %d\n", benchFlags.concurrency)
		if benchFlags.failureRate > 0 {
			fmt.Printf("Failure rate: %.0f%%\n", benchFlags.failureRate*100)
		}
		fmt.Println()
	}

	var progress cli.ProgressReporter
	if format == cli.FormatText {
		progress = cli.NewProgressReporter(nil)
	}

	results := runAdmissionLoad(context.Background(), gov, benchFlags.provider,
		benchFlags.requests, benchFlags.concurrency, benchFlags.failureRate, progress)

	if format == cli.FormatJSON {
		return outputBenchJSON(results)
	}
	displayBenchResults(results)
	return nil
}

// benchResults holds the measurements of one admission load run.
type benchResults struct {
	provider  string
	requests  int
	admitted  int
	denied    map[governor.DenyReason]int
	duration  time.Duration
	latencies []time.Duration
}

// runAdmissionLoad hammers the provider's admission path with the given
// number of workers. Admitted attempts are fed back as outcomes, failing
// with the configured probability, so adaptive limits and the circuit
// breaker move the way they would under real traffic.
func runAdmissionLoad(ctx context.Context, gov *governor.Governor, provider string, requests, concurrency int, failureRate float64, progress cli.ProgressReporter) *benchResults {
	results := &benchResults{
		provider:  provider,
		requests:  requests,
		denied:    make(map[governor.DenyReason]int),
		latencies: make([]time.Duration, 0, requests),
	}

	var (
		next int64
		done int64
		mu   sync.Mutex
		wg   sync.WaitGroup
	)

	if progress != nil {
		progress.Start(int64(requests))
	}

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			for {
				i := atomic.AddInt64(&next, 1)
				if i > int64(requests) {
					return
				}

				admitStart := time.Now()
				decision := gov.Admit(ctx, provider, rpc.MethodGetHealth, nil)
				latency := time.Since(admitStart)

				if decision.Allowed {
					outcome := governor.Success()
					if failureRate > 0 && rng.Float64() < failureRate {
						outcome = governor.Failure(http.StatusServiceUnavailable)
					}
					gov.RecordOutcome(ctx, provider, outcome)
				}

				mu.Lock()
				results.latencies = append(results.latencies, latency)
				if decision.Allowed {
					results.admitted++
				} else {
					results.denied[decision.Reason]++
				}
				mu.Unlock()

				if progress != nil {
					progress.Update(atomic.AddInt64(&done, 1))
				}
			}
		}(start.UnixNano() + int64(w))
	}
	wg.Wait()

	if progress != nil {
		progress.Finish()
	}

	results.duration = time.Since(start)
	return results
}

func displayBenchResults(results *benchResults) {
	deniedTotal := 0
	for _, n := range results.denied {
		deniedTotal += n
	}

	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Admissions:      %d total, %d admitted, %d denied\n",
		results.requests, results.admitted, deniedTotal)
	for _, reason := range []governor.DenyReason{governor.ReasonRateLimited, governor.ReasonCircuitOpen} {
		if n := results.denied[reason]; n > 0 {
			fmt.Printf("  %-14s %d\n", string(reason)+":", n)
		}
	}
	fmt.Printf("Duration:        %.2fs\n", results.duration.Seconds())

	if results.duration > 0 {
		throughput := float64(results.requests) / results.duration.Seconds()
		fmt.Printf("Throughput:      %.0f admissions/s\n", throughput)
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)

		fmt.Println()
		fmt.Println("Admit latency:")
		fmt.Printf("  Min:     %s\n", min)
		fmt.Printf("  Mean:    %s\n", mean)
		fmt.Printf("  Median:  %s\n", median)
		fmt.Printf("  p95:     %s\n", p95)
		fmt.Printf("  p99:     %s\n", p99)
		fmt.Printf("  Max:     %s\n", max)
	}
}

// benchView is the JSON shape of a bench run. Latencies are microseconds.
type benchView struct {
	Provider   string         `json:"provider"`
	Requests   int            `json:"requests"`
	Admitted   int            `json:"admitted"`
	Denied     map[string]int `json:"denied,omitempty"`
	DurationMS float64        `json:"duration_ms"`
	PerSecond  float64        `json:"admissions_per_second"`
	Latency    latencyView    `json:"admit_latency_us"`
}

type latencyView struct {
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

func outputBenchJSON(results *benchResults) error {
	min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)
	us := func(d time.Duration) float64 { return float64(d.Nanoseconds()) / 1000.0 }

	view := benchView{
		Provider:   results.provider,
		Requests:   results.requests,
		Admitted:   results.admitted,
		DurationMS: float64(results.duration.Microseconds()) / 1000.0,
		Latency: latencyView{
			Min:    us(min),
			Mean:   us(mean),
			Median: us(median),
			P95:    us(p95),
			P99:    us(p99),
			Max:    us(max),
		},
	}
	if results.duration > 0 {
		view.PerSecond = float64(results.requests) / results.duration.Seconds()
	}
	if len(results.denied) > 0 {
		view.Denied = make(map[string]int, len(results.denied))
		for reason, n := range results.denied {
			view.Denied[string(reason)] = n
		}
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, view)
}

func calculatePercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[int(float64(len(sorted))*0.95)]
	p99 = sorted[int(float64(len(sorted))*0.99)]

	return
}
