package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI over the tracked collection.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("", r.config.Log)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	opts := ui.ModelOpts{
		Manager: manager,
		Catalog: r.catalog,
		Sweeper: r.sweeper,
		Logger:  r.logger,
		Now:     r.now,
		OpenURL: r.openURL,
		SignOut: r.signOut,
	}
	if r.identity != nil {
		opts.SignIn = r.signIn
	}
	return ui.Run(ctx, opts)
}
