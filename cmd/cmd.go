// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func idFlag(usage string, required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    usage,
		Required: required,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Only print the migration status",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml template to the --config path",
				Action: r.SetupConfig,
			},
		},
	}
}

// archiveCommand archives one playlist or every playlist listed in a file.
func archiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Archive playlists, fetching only new items when already archived",
		Flags: []cli.Flag{
			idFlag("Playlist ID to archive", false),
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "File with one playlist ID per line",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
		},
		Action: r.Archive,
	}
}

// peekCommand previews the first items of remote playlists without storing them.
func peekCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "peek",
		Usage: "Print the first items of remote playlists without archiving",
		Flags: []cli.Flag{
			idFlag("Playlist ID to preview", false),
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "File with one playlist ID per line",
			},
			&cli.StringFlag{
				Name:    "number",
				Aliases: []string{"n"},
				Usage:   "Items per playlist: one count for all (10) or one per playlist (10,5,20)",
			},
		},
		Action: r.Peek,
	}
}

// listCommand lists archived playlists.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List archived playlists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.List,
	}
}

// openCommand prints an archived playlist.
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Print the items of an archived playlist",
		Flags: []cli.Flag{
			idFlag("Playlist ID to open", true),
			&cli.BoolFlag{
				Name:  "desc",
				Usage: "Order by descending position",
			},
			&cli.BoolFlag{
				Name:  "web",
				Usage: "Open the playlist on YouTube in the browser",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Open,
	}
}

// searchCommand runs a fuzzy title search.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Fuzzy search archived video titles",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			idFlag("Only search this playlist", false),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results (default from config)",
			},
			&cli.FloatFlag{
				Name:  "cutoff",
				Usage: "Minimum similarity in [0,1] (default from config)",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// exportCommand writes archived playlists to files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export archived playlists",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Playlist ID to export (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every archived playlist",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Output directory (default from config)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, txt or json",
				Value:   "csv",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers for multi-playlist exports",
				Value: 4,
			},
		},
		Action: r.Export,
	}
}

// importCommand loads a CSV export.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a playlist from a CSV export (items or metadata file)",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "file",
			},
		},
		Action: r.Import,
	}
}

// deleteCommand removes an archived playlist.
func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Usage:   "Delete an archived playlist and videos no other playlist references",
		Flags: []cli.Flag{
			idFlag("Playlist ID to delete", true),
		},
		Action: r.Delete,
	}
}

// historyCommand prints recorded archive runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded archive runs",
		Flags: []cli.Flag{
			idFlag("Only show runs for this playlist", false),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for browsing the archive.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse the archive in an interactive TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/ytarchive-tui.log",
			},
		},
		Action: r.TUI,
	}
}
