package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/cmdgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes the process arguments. It returns the resolved
// configuration and the residual command token vector, a boolean indicating
// the program should exit cleanly, or an ExitError. Option flags come before
// the command tokens; everything after the first non-flag token is handed to
// the engine untouched.
func Parse(args []string, output io.Writer) (*app.Config, []string, bool, error) {
	base, err := app.LoadConfig()
	if err != nil {
		return nil, nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("cmdgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
cmdgrid - A pluggable command-line runtime driven by unit manifests.

Usage:
  cmdgrid [options] COMMAND [args and flags...]

Arguments:
  COMMAND
    Command path segments resolved against the discovered command tree.

Options:
`)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", base.Root, "Directory containing the commands and extensions subdirectories.")
	rFlag := flagSet.String("r", "", "Directory containing the unit tree (shorthand).")
	logFormatFlag := flagSet.String("log-format", base.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", base.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, nil, true, nil
		}
		return nil, nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	root := *rootFlag
	if *rFlag != "" {
		root = *rFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	argv := flagSet.Args()
	if len(argv) == 0 {
		flagSet.Usage()
		return nil, nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		Root:      root,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, argv, false, nil
}
