package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/desertthunder/watchlog/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive watchlist UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	if err := r.SetLogger(fileLogger); err != nil {
		return err
	}

	deps := ui.Deps{
		Navigator: r.nav,
		Auth:      r.auth,
		Catalog:   r.catalog,
		Logger:    r.logger,
	}
	if r.uploader != nil {
		deps.Uploader = r.uploader
	}

	p := tea.NewProgram(ui.NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
