package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/tvtrack/internal/formatter"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/shows"
	"github.com/urfave/cli/v3"
)

// ShowsList prints the derived view of the collection.
//
// --filter, --sort and --group apply to this invocation only; the stored selectors are the defaults.
func (r *Runner) ShowsList(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	filter, mode, group := manager.Filter(), manager.Sort(), manager.Group()
	if cmd.IsSet("filter") {
		if filter, err = models.ParseFilter(cmd.String("filter")); err != nil {
			return err
		}
	}
	if cmd.IsSet("sort") {
		if mode, err = models.ParseSortMode(cmd.String("sort")); err != nil {
			return err
		}
	}
	if cmd.IsSet("group") {
		if group, err = models.ParseGroupBy(cmd.String("group")); err != nil {
			return err
		}
	}

	view := shows.NewSorter(r.config.Display.Locale).View(manager.Snapshot(), filter, mode)

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}

	if len(view) == 0 {
		if manager.Len() == 0 {
			return r.writePlain("No shows tracked yet. Try: tvtrack add \"<title>\"\n")
		}
		return r.writePlain("No shows match filter %q\n", filter)
	}

	now := r.now()
	for _, g := range shows.Grouped(view, group) {
		if g.Key != "" {
			r.writePlainHeader(fmt.Sprintf("%s (%d)", g.Key, len(g.Shows)))
		}
		for _, show := range g.Shows {
			r.writePlain("%s\n", formatter.Card(show, now))
		}
	}
	return nil
}

// ShowsToggle flips the watched flag of a show.
func (r *Runner) ShowsToggle(ctx context.Context, cmd *cli.Command) error {
	return r.mutateShow(ctx, cmd, func(id int) error { return r.manager.ToggleWatched(id) }, func(show models.TrackedShow) string {
		if show.Watched {
			return fmt.Sprintf("✓ Marked %q as watched", show.Title)
		}
		return fmt.Sprintf("✓ Marked %q as not watched", show.Title)
	})
}

// ShowsDelete stops tracking a show.
func (r *Runner) ShowsDelete(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	id, err := showID(cmd)
	if err != nil {
		return err
	}

	show, _ := manager.Find(id)
	if err := manager.Delete(id); err != nil {
		return err
	}
	manager.Wait()

	return r.writePlain("✓ Stopped tracking %q\n", show.Title)
}

// ShowsNote replaces the notes of a show. An empty text clears them.
func (r *Runner) ShowsNote(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	return r.mutateShow(ctx, cmd, func(id int) error { return r.manager.UpdateNote(id, text) }, func(show models.TrackedShow) string {
		if show.Notes == "" {
			return fmt.Sprintf("✓ Cleared notes for %q", show.Title)
		}
		return fmt.Sprintf("✓ Saved notes for %q", show.Title)
	})
}

// ShowsUpcoming lists shows with a known next episode, soonest first.
func (r *Runner) ShowsUpcoming(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	upcoming := manager.Upcoming()
	if cmd.Bool("json") {
		return r.writeJSON(upcoming, true)
	}
	if len(upcoming) == 0 {
		return r.writePlain("No upcoming episodes\n")
	}

	now := r.now()
	for _, show := range upcoming {
		ep := show.NextEpisode
		r.writePlain("%s S%02dE%02d: %s\n", show.Title, ep.Season, ep.Number, formatter.NextEpisode(show, now))
	}
	return nil
}

// mutateShow applies fn to the show named by the id argument and reports the result.
func (r *Runner) mutateShow(ctx context.Context, cmd *cli.Command, fn func(id int) error, report func(models.TrackedShow) string) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	id, err := showID(cmd)
	if err != nil {
		return err
	}

	if err := fn(id); err != nil {
		return err
	}
	manager.Wait()

	show, _ := manager.Find(id)
	return r.writePlain("%s\n", report(show))
}

func showID(cmd *cli.Command) (int, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: show id is required", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a show id", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
