package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// SyncPush overwrites the remote collection with the local one.
func (r *Runner) SyncPush(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.relay()
	err = manager.Push(ctx, progress)
	stop()
	if err != nil {
		return err
	}

	return r.writePlain("✓ Pushed %d shows for %s\n", manager.Len(), manager.Identity().DisplayName)
}

// SyncPull replaces the local collection with the remote one.
func (r *Runner) SyncPull(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.relay()
	loaded, err := manager.Pull(ctx, progress)
	stop()
	if err != nil {
		return err
	}
	manager.Wait()

	if !loaded {
		return r.writePlain("No remote shows for %s; local collection kept\n", manager.Identity().DisplayName)
	}
	return r.writePlain("✓ Pulled %d shows for %s\n", manager.Len(), manager.Identity().DisplayName)
}
