package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tvtrack/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Export writes the collection in canonical order to stdout or a file.
//
// Markdown with --posters writes a directory with downloaded poster images instead of a single file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	tracked := manager.Snapshot()
	output := cmd.String("output")
	now := r.now()

	if format == formatter.Markdown && cmd.Bool("posters") {
		result, err := formatter.WriteMarkdownExport(tracked, output, true, now)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d shows to %s\n", len(tracked), result.Directory)
		return r.writePlain("Files: %d, posters: %d\n", len(result.Files), result.Posters)
	}

	if output == "" {
		data, err := formatter.Export(format, tracked, now)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if err := formatter.WriteExport(format, tracked, output, now); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return r.writePlain("✓ Exported %d shows to %s\n", len(tracked), output)
}
