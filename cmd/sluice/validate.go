package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"helios-hq/sluice/pkg/cli"
	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/telemetry/logging"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a Sluice configuration file.

The validate command loads the configuration the same way the daemon
does, including SLUICE_* environment variable overrides, and reports
every validation error with the dotted path of the offending field:
  - Provider strategy names and their required parameter blocks
  - Circuit breaker and backoff parameter ranges
  - Cache backend selection
  - Telemetry settings

Examples:
  # Validate the default config file
  sluice validate

  # Validate a specific file
  sluice validate --config /etc/sluice/config.yaml

  # JSON output for CI/CD
  sluice validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// configReport is the validation result for one configuration file.
type configReport struct {
	File      string            `json:"file"`
	Valid     bool              `json:"valid"`
	Providers []providerSummary `json:"providers,omitempty"`
	Errors    []fieldIssue      `json:"errors,omitempty"`
}

// providerSummary describes one configured provider. Endpoint URLs are
// credential-masked before they appear here.
type providerSummary struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Strategy  string `json:"strategy"`
	Fallbacks int    `json:"fallbacks,omitempty"`
	Caching   bool   `json:"caching"`
}

// fieldIssue is a single validation error.
type fieldIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}

	report, err := buildConfigReport(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err)
	}

	if format == cli.FormatJSON {
		return outputReportJSON(report)
	}
	return outputReportText(report)
}

// buildConfigReport loads and validates the file. Validation errors land
// in the report; read and parse failures are returned as errors since
// there is nothing field-level to report about them.
func buildConfigReport(path string) (configReport, error) {
	report := configReport{File: path, Valid: true}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		var verr config.ValidationError
		if !errors.As(err, &verr) {
			return configReport{}, err
		}
		report.Valid = false
		for _, fe := range verr.Errors {
			report.Errors = append(report.Errors, fieldIssue{Field: fe.Field, Message: fe.Message})
		}
		return report, nil
	}

	redactor := logging.NewRedactor()
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := cfg.Providers[name]
		report.Providers = append(report.Providers, providerSummary{
			Name:      name,
			URL:       redactor.RedactURL(p.URL),
			Strategy:  p.Strategy,
			Fallbacks: len(p.FallbackURLs),
			Caching:   p.UseCaching,
		})
	}
	return report, nil
}

func outputReportText(report configReport) error {
	fmt.Printf("Validating %s...\n", report.File)

	if report.Valid {
		fmt.Println("✓ Configuration valid")
		for _, p := range report.Providers {
			line := fmt.Sprintf("✓ %s: %s strategy, %s", p.Name, p.Strategy, p.URL)
			if p.Fallbacks > 0 {
				line += fmt.Sprintf(" (+%d fallback)", p.Fallbacks)
			}
			if p.Caching {
				line += " [cached]"
			}
			fmt.Println(line)
		}
	}

	for _, issue := range report.Errors {
		if issue.Field != "" {
			fmt.Printf("✗ Error: %s: %s\n", issue.Field, issue.Message)
		} else {
			fmt.Printf("✗ Error: %s\n", issue.Message)
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d provider(s), %d error(s)\n", len(report.Providers), len(report.Errors))

	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}
	return nil
}

func outputReportJSON(report configReport) error {
	if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, report); err != nil {
		return err
	}
	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}
	return nil
}
