package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tvtrack/internal/formatter"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search lists catalog matches for a query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	r.logger.Debugf("searching catalog for %q", query)
	hits := tasks.Search(ctx, r.catalog, query, r.logger)

	if cmd.Bool("json") {
		return r.writeJSON(hits, true)
	}

	if len(hits) == 0 {
		return r.writePlain("No shows match %q\n", query)
	}

	r.writePlain("Found %d shows:\n\n", len(hits))
	for i, hit := range hits {
		r.writePlain("%d. %s\n", i+1, hit.Title)
		r.writePlain("   Rating: %s | Genres: %s\n", hit.Rating, formatter.Genres(hit.Genres))
	}
	return nil
}

// Add searches the catalog and tracks the picked result.
//
// A show that is already tracked is skipped silently.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	hits := tasks.Search(ctx, r.catalog, query, r.logger)
	if len(hits) == 0 {
		return fmt.Errorf("%w: no shows match %q", shared.ErrNotFound, query)
	}

	hit, err := pick(hits, cmd.Int("pick"))
	if err != nil {
		return err
	}

	progress, stop := r.relay()
	show, err := manager.AddFromHit(ctx, hit, progress)
	stop()

	if errors.Is(err, shared.ErrDuplicate) {
		r.logger.Debug("already tracked", "title", hit.Title)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not add %q: %w", hit.Title, err)
	}
	manager.Wait()

	r.writePlainln("✓ Now tracking")
	return r.writePlain("%s", formatter.Card(*show, r.now()))
}

// pick returns the n-th hit, counting from 1.
func pick(hits []models.CatalogHit, n int) (models.CatalogHit, error) {
	if n < 1 || n > len(hits) {
		return models.CatalogHit{}, fmt.Errorf("%w: --pick must be between 1 and %d", shared.ErrInvalidArgument, len(hits))
	}
	return hits[n-1], nil
}
