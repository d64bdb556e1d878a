package main

import (
	"context"

	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/tasks"
	"github.com/urfave/cli/v3"
)

// defaultWatchCron runs the sweeps every morning.
const defaultWatchCron = "0 8 * * *"

// Notify runs one episode sweep, plus the season sweep with --seasons, and prints the alerts.
func (r *Runner) Notify(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	today := shared.Today(r.now())
	tracked := manager.Snapshot()

	alerts := r.sweeper.Episodes(ctx, tracked, today)
	if cmd.Bool("seasons") {
		alerts = append(alerts, r.sweeper.Seasons(ctx, tracked, today)...)
	}

	if cmd.Bool("json") {
		return r.writeJSON(alerts, true)
	}

	if len(alerts) == 0 {
		return r.writePlain("No new episodes today\n")
	}

	for _, alert := range alerts {
		r.writePlain("%s\n", alert.Message)
	}
	if latest := manager.Notification(); latest != "" {
		r.writePlainln("Latest: %s", latest)
	}
	return nil
}

// Watch runs the sweeps on a cron schedule until interrupted.
//
// Logs go to the rotating log file; alerts are printed as they arrive.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	cron := cmd.String("cron")
	if cron == "" {
		cron = r.config.Notify.WatchCron
	}
	if cron == "" {
		cron = defaultWatchCron
	}

	logger, err := shared.NewFileLogger("", r.config.Log)
	if err != nil {
		return err
	}
	r.SetLogger(logger)

	manager, err := r.open(ctx)
	if err != nil {
		return err
	}
	r.sweeper.OnAlert(func(alert tasks.Alert) {
		r.writePlain("%s\n", alert.Message)
	})

	scheduler, err := tasks.NewScheduler(ctx, r.logger)
	if err != nil {
		return err
	}
	for _, task := range tasks.WatchTasks(manager, r.sweeper, cron) {
		if err := scheduler.Register(task); err != nil {
			return err
		}
	}

	r.writePlain("→ Watching %d shows on %q (logs in %s). Press Ctrl+C to stop.\n", manager.Len(), cron, r.config.Log.Path)
	scheduler.Start()

	<-ctx.Done()
	r.writePlain("→ Stopping\n")
	return scheduler.Stop()
}
