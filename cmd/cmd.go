// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and run session database migrations",
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	credentials := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account username",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (read from stdin when omitted)",
			},
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in and store the session token",
				Flags:  credentials(),
				Action: r.AuthLogin,
			},
			{
				Name:   "register",
				Usage:  "Create an account and store the session token",
				Flags:  credentials(),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the stored session and its claims",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

func moviesCommand(r *Runner) *cli.Command {
	return itemsCommand(r, models.KindMovie, []string{"movie", "m"})
}

func seriesCommand(r *Runner) *cli.Command {
	return itemsCommand(r, models.KindSeries, []string{"show", "s"})
}

// itemsCommand builds the watchlist operations for one entity kind.
func itemsCommand(r *Runner, kind models.Kind, aliases []string) *cli.Command {
	idFlag := func() cli.Flag {
		return &cli.IntFlag{
			Name:     "id",
			Usage:    kind.Label() + " ID",
			Required: true,
		}
	}
	draftFlags := func() []cli.Flag {
		flags := []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title"},
			&cli.StringFlag{Name: "summary", Usage: "Summary"},
			&cli.StringFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration in minutes"},
			&cli.StringFlag{Name: "image", Usage: "Image URL"},
			&cli.StringFlag{Name: "image-file", Usage: "Local image to upload instead of --image"},
			&cli.StringSliceFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre name or ID (repeatable)"},
		}
		if kind == models.KindSeries {
			flags = append(flags, &cli.StringFlag{Name: "episodes", Aliases: []string{"e"}, Usage: "Number of episodes"})
		}
		return flags
	}

	return &cli.Command{
		Name:    kind.Plural(),
		Aliases: aliases,
		Usage:   "Manage your " + kind.Plural() + " watchlist",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List " + kind.Plural() + " by status",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre name filter (\"all\" clears the saved filter)"},
					&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Usage: "Title order: asc or desc"},
					&cli.StringFlag{Name: "title", Usage: "Title search"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.itemsAction(kind, r.ItemsList),
			},
			{
				Name:   "add",
				Usage:  "Add a " + kind.Label() + " to the to-watch bucket",
				Flags:  draftFlags(),
				Action: r.itemsAction(kind, r.ItemsAdd),
			},
			{
				Name:   "edit",
				Usage:  "Edit a " + kind.Label() + "; unset flags keep their value",
				Flags:  append([]cli.Flag{idFlag()}, draftFlags()...),
				Action: r.itemsAction(kind, r.ItemsEdit),
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a " + kind.Label(),
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.itemsAction(kind, r.ItemsDelete),
			},
			{
				Name:   "next",
				Usage:  "Move a " + kind.Label() + " to the next bucket",
				Flags:  []cli.Flag{idFlag()},
				Action: r.itemsAction(kind, r.ItemsNext),
			},
			{
				Name:   "prev",
				Usage:  "Move a " + kind.Label() + " to the previous bucket",
				Flags:  []cli.Flag{idFlag()},
				Action: r.itemsAction(kind, r.ItemsPrev),
			},
			{
				Name:  "info",
				Usage: "Show the details of a " + kind.Label(),
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "open", Usage: "Open the image in a browser"},
				},
				Action: r.itemsAction(kind, r.ItemsInfo),
			},
		},
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "Genre reference data",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List genres",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.GenresList,
			},
		},
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export both watchlists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "json, yaml, csv, markdown or txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: watchlog_export.{ext})",
			},
			&cli.BoolFlag{Name: "stdout", Usage: "Print instead of writing a file"},
			&cli.StringFlag{Name: "sort", Usage: "Title order: asc or desc", Value: "asc"},
			&cli.StringFlag{Name: "genre", Usage: "Genre name filter"},
		},
		Action: r.Export,
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Create items from a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "CSV file with a header row",
				Required: true,
			},
			&cli.StringFlag{Name: "kind", Usage: "Treat every row as movie or series"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent workers", Value: 3},
			&cli.FloatFlag{Name: "rate", Usage: "Requests per second (default: config import.rate_limit)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Validate rows without creating anything"},
		},
		Action: r.Import,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive watchlist TUI",
		Action:  r.TUI,
	}
}

func mockAPICommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mock-api",
		Usage: "Serve an in-memory media tracking API for offline use",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default: config server.host)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default: config server.port)"},
			&cli.StringFlag{Name: "user", Usage: "Seed an account as name:password"},
		},
		Action: r.MockAPI,
	}
}
