package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	exitFailure = 1
	exitUsage   = 2
	exitSource  = 3
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "ytarchive",
		Usage:    "Archive YouTube playlists into a local SQLite database",
		Version:  "0.1.0",
		Flags:    runner.flags(),
		Before:   runner.Before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.Run(ctx, os.Args)
	stop()

	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close archive", "error", cerr)
	}
	if err != nil {
		os.Exit(exitCode(logger, err))
	}
}

// exitCode logs err and returns the process exit status for it.
func exitCode(logger *log.Logger, err error) int {
	switch {
	case errors.Is(err, shared.ErrMissingCredentials):
		logger.Error("no YouTube credentials configured, set credentials.youtube.api_key or token_file", "error", err)
		return exitUsage
	case errors.Is(err, shared.ErrMissingConfig),
		errors.Is(err, shared.ErrInvalidConfig),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidInput):
		logger.Error("invalid input", "error", err)
		return exitUsage
	case errors.Is(err, shared.ErrSourceUnavailable):
		logger.Error("YouTube request failed, nothing was written", "error", err)
		return exitSource
	case errors.Is(err, shared.ErrNotFound):
		logger.Error("not found", "error", err)
		return exitFailure
	default:
		logger.Error("application error", "error", err)
		return exitFailure
	}
}
