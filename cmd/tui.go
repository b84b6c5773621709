package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/desertthunder/ytarchive/internal/tasks"
	"github.com/desertthunder/ytarchive/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive archive browser.
//
// Re-archiving from the TUI is only offered when YouTube credentials are configured.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	store, err := r.archiveStore()
	if err != nil {
		return err
	}

	var archiver *tasks.Archiver
	_, err = r.playlistSource(ctx)
	switch {
	case errors.Is(err, shared.ErrMissingCredentials):
		r.logger.Info("no credentials configured, archiving disabled")
	case err != nil:
		return err
	default:
		if archiver, err = r.archiver(ctx, true); err != nil {
			return err
		}
	}

	model := ui.NewModel(ctx, store, archiver)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
