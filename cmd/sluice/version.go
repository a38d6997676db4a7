package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"helios-hq/sluice/pkg/cli"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X main.Version=... -X main.GitCommit=... -X main.BuildDate=..."
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// buildInfo mirrors the payload the diagnostics server exposes at
// /version, plus the platform for bug reports.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var versionFlags struct {
	format string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the Sluice version along with the commit, build date, and toolchain it was built from.`,
	RunE:  printVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVar(&versionFlags.format, "format", "text", "output format: text, json")
}

func printVersion(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(versionFlags.format)
	if err != nil {
		return err
	}

	info := buildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(out, info)
	}

	fmt.Fprintf(out, "Sluice %s\n", info.Version)
	fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
	fmt.Fprintf(out, "  go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  platform:   %s\n", info.Platform)
	return nil
}
