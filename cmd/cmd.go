// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles account session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage account sessions",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name", Required: true},
					&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
					&cli.BoolFlag{Name: "accept-terms", Usage: "Accept the terms and conditions"},
				},
				Action: r.AuthSignup,
			},
			{
				Name:   "logout",
				Usage:  "Revoke the current session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in account",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.AuthWhoami,
			},
		},
	}
}

// diaryCommand handles diary operations
func diaryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "diary",
		Aliases: []string{"diaries"},
		Usage:   "Manage diaries",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your diaries, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.DiaryList,
			},
			{
				Name:  "create",
				Usage: "Create a new diary",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Action: r.DiaryCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename a diary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Diary ID", Required: true},
					&cli.StringFlag{Name: "title", Usage: "New title", Required: true},
				},
				Action: r.DiaryRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a diary and all of its entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Diary ID", Required: true},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: r.DiaryDelete,
			},
		},
	}
}

// entryCommand handles entry operations
func entryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "entry",
		Aliases: []string{"entries"},
		Usage:   "Manage diary entries",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a diary's entries with previews, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "diary", Usage: "Diary ID", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.EntryList,
			},
			{
				Name:  "create",
				Usage: "Write an entry (published unless --draft)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "diary", Usage: "Diary ID", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Entry title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "Entry content", Required: true},
					&cli.BoolFlag{Name: "draft", Usage: "Save as a draft instead of publishing"},
				},
				Action: r.EntryCreate,
			},
			{
				Name:  "edit",
				Usage: "Rewrite an entry's title and content",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Entry ID", Required: true},
					&cli.StringFlag{Name: "title", Usage: "New title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "New content", Required: true},
				},
				Action: r.EntryEdit,
			},
			{
				Name:  "publish",
				Usage: "Publish a draft entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Entry ID", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Final title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "Final content", Required: true},
				},
				Action: r.EntryPublish,
			},
			{
				Name:  "delete",
				Usage: "Delete an entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Entry ID", Required: true},
				},
				Action: r.EntryDelete,
			},
		},
	}
}

// exportCommand handles journal exports
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export diaries to local files",
		Commands: []*cli.Command{
			{
				Name:  "diary",
				Usage: "Export one diary with all of its entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Diary ID", Required: true},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: markdown, csv, or text",
						Value: "markdown",
					},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path"},
				},
				Action: r.ExportDiary,
			},
			{
				Name:  "all",
				Usage: "Dump the whole journal as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.ExportAll,
			},
		},
	}
}

// cacheCommand handles the local read cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Mirror journal rows into the local cache",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Refresh the cache from the row store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.CacheSync,
			},
			{
				Name:  "clear",
				Usage: "Drop all cached rows",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive journaling.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive journal",
		Action:  r.TUI,
	}
}
