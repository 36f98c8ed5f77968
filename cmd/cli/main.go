package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/cmdgrid/internal/app"
	"github.com/vk/cmdgrid/internal/cli"
)

// main is the entrypoint for the cmdgrid binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Composition panics from app.NewApp are recovered here and
// surfaced as plain errors.
func run(outW io.Writer, args []string) (err error) {
	appConfig, argv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	engine := app.NewApp(outW, appConfig, nil)
	if code := engine.Run(context.Background(), argv); code != 0 {
		// The runtime already rendered the failure through its sink.
		return &cli.ExitError{Code: code}
	}
	return nil
}
