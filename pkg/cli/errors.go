package cli

import (
	"errors"
	"fmt"
)

// Exit codes reported by Execute. Configuration problems get their own
// code so wrapper scripts can tell a bad config file from a failed run.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitConfig = 2
)

// ConfigError reports a problem with the loaded configuration. Field is
// the dotted path to the offending field, or empty when the whole file
// could not be loaded.
type ConfigError struct {
	Field string
	Err   error
}

// NewConfigError wraps err as a ConfigError for the given field path.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error in %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CommandError wraps a failure from a command execution with the command
// name for the top-level error report.
type CommandError struct {
	Command string
	Err     error
}

// NewCommandError wraps err as a CommandError for the named command.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command onto a process exit code.
// nil maps to ExitOK, configuration errors anywhere in the chain map to
// ExitConfig, everything else to ExitFailed.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		return ExitConfig
	}
	return ExitFailed
}
