package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"helios-hq/sluice/pkg/cli"
)

// Flags shared by every subcommand.
var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sluice",
	Short: "Sluice - request governor for Solana RPC providers",
	Long: `Sluice is a request governor that mediates outbound JSON-RPC calls to
rate limited Solana data providers.

Every call passes through an admission pipeline before it leaves the
process:
  - Response cache lookup keyed by request fingerprint
  - Per-provider circuit breaker with half-open trials
  - Admission strategy (fixed, token bucket, adaptive, exponential backoff)

Admitted calls fail over across a provider's endpoints, retries wait out
the provider's backoff schedule, and call outcomes feed the adaptive
limits and circuit state.

For more information, visit: https://github.com/helios-hq/sluice`,
	Version: Version,
}

// Execute runs the root command. Configuration problems exit with a
// distinct code so wrapper scripts can tell them apart from runtime
// failures.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
