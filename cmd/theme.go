package main

import (
	"context"
	"strings"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/urfave/cli/v3"
)

// Theme prints the stored theme, or sets it when given dark, light or toggle.
func (r *Runner) Theme(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	switch arg := strings.ToLower(cmd.StringArg("theme")); arg {
	case "":
		return r.writePlain("Theme: %s\n", manager.Theme())
	case "toggle":
		manager.ToggleTheme()
	default:
		theme, err := models.ParseTheme(arg)
		if err != nil {
			return err
		}
		manager.SetTheme(theme)
	}

	return r.writePlain("✓ Theme set to %s\n", manager.Theme())
}
