// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootFlags are shared by every command.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "no-notify",
			Usage: "Disable desktop notifications",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file or initialize the database",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "List migrations without applying them",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the latest migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the TVMaze catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Search the catalog and track a show",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pick",
				Usage: "Which search result to add, counting from 1",
				Value: 1,
			},
		},
		Action: r.Add,
	}
}

func showsCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}}
	}

	return &cli.Command{
		Name:    "shows",
		Aliases: []string{"ls"},
		Usage:   "Tracked show operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracked shows",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "all, watched or unwatched",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "alphabetical, rating or nextEpisode",
					},
					&cli.StringFlag{
						Name:  "group",
						Usage: "none, genre or status",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ShowsList,
			},
			{
				Name:      "toggle",
				Usage:     "Toggle the watched flag of a show",
				Arguments: idArg(),
				Action:    r.ShowsToggle,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Stop tracking a show",
				Arguments: idArg(),
				Action:    r.ShowsDelete,
			},
			{
				Name:  "note",
				Usage: "Replace the notes of a show",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "text"},
				},
				Action: r.ShowsNote,
			},
			{
				Name:  "upcoming",
				Usage: "List shows with a known next episode",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ShowsUpcoming,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Google sign-in for syncing across devices",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with Google using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session",
				Action: r.AuthStatus,
			},
		},
	}
}

func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize with the remote store",
		Commands: []*cli.Command{
			{
				Name:   "push",
				Usage:  "Overwrite the remote collection with the local one",
				Action: r.SyncPush,
			},
			{
				Name:   "pull",
				Usage:  "Replace the local collection with the remote one",
				Action: r.SyncPull,
			},
		},
	}
}

func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Check tracked shows for episodes airing today",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "seasons",
				Usage: "Also check for upcoming seasons",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Notify,
	}
}

func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the notification sweeps on a schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cron",
				Usage: "Cron expression, defaults to notify.watch_cron",
			},
		},
		Action: r.Watch,
	}
}

func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or set the TUI theme (dark, light or toggle)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "theme"},
		},
		Action: r.Theme,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export tracked shows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "csv, md, txt or json",
				Value:   "md",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (directory with --posters); stdout when empty",
			},
			&cli.BoolFlag{
				Name:  "posters",
				Usage: "Download poster images alongside a Markdown export",
			},
		},
		Action: r.Export,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}
