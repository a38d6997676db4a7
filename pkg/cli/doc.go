/*
Package cli provides shared helpers for the sluice command surface:
output formatting, progress reporting, typed command errors with exit
code mapping, and signal-driven shutdown contexts.

Output Formatting:

Commands accept a --format flag whose value parses into an OutputFormat,
and render machine-readable output through a Formatter:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, report)
	}

Errors and Exit Codes:

Commands wrap failures in ConfigError or CommandError so the top level
can report them uniformly and pick the process exit code:

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}

Progress Reporting:

Long-running commands draw a throttled progress bar:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(total)
	for i := int64(0); i < total; i++ {
		// do work
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

The daemon derives its lifetime from a context cancelled on SIGINT or
SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
