// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strconv"

	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
	}
}

// outputFlags are shared by every command that prints a movie list.
func outputFlags() []cli.Flag {
	return append(jsonFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv, markdown, json",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the listing to a file (or a directory for markdown)",
		},
		&cli.BoolFlag{
			Name:  "no-cover",
			Usage: "Skip downloading the cover image for markdown exports",
		},
	)
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}

func homeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "home",
		Usage:  "Show trending movies and the action, comedy and drama rows",
		Flags:  jsonFlags(),
		Action: r.Home,
	}
}

func trendingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "trending",
		Aliases: []string{"t"},
		Usage:   "List this week's trending movies",
		Flags:   outputFlags(),
		Action:  r.Trending,
	}
}

func genreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "genre",
		Aliases:   []string{"g"},
		Usage:     "List movies of a genre by id or name",
		ArgsUsage: "<id|name>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "genre"},
		},
		Flags:  outputFlags(),
		Action: r.Genre,
	}
}

func movieCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "movie",
		Aliases:   []string{"m"},
		Usage:     "Show the details of a movie",
		ArgsUsage: "<id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags:  jsonFlags(),
		Action: r.Movie,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search movies by title",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags:  outputFlags(),
		Action: r.Search,
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "genres",
		Usage:  "List the genre catalog",
		Flags:  jsonFlags(),
		Action: r.Genres,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export several listings to files at once",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "trending",
				Usage: "Export the trending list",
			},
			&cli.StringSliceFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Genre id or name to export (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Search query to export (repeatable)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Output directory (default: playwrong_export_{epoch})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Listings fetched per second",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "covers",
				Usage: "Download cover images for markdown exports",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the export summary as JSON",
			},
		},
		Action: r.Export,
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorites stored in the local database",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorites of a user",
				Flags:  append([]cli.Flag{subjectFlag()}, jsonFlags()...),
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to a user's favorites",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{subjectFlag()},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from a user's favorites",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{subjectFlag()},
				Action:    r.FavoritesRemove,
			},
		},
	}
}

func subjectFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "subject",
		Aliases:  []string{"u"},
		Usage:    "Identity provider subject owning the favorites",
		Required: true,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Credential and session maintenance",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check the movie API key and the login provider settings",
				Action: r.AuthStatus,
			},
			{
				Name:   "prune",
				Usage:  "Delete expired sessions and stale login states",
				Action: r.AuthPrune,
			},
		},
	}
}

func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct access to the movie API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET an API path, e.g. /movie/550?append_to_response=credits",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local catalog server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the home page in the default browser",
			},
		},
		Action: r.Serve,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse the catalog in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where the TUI writes its logs",
				Value: tuiLogFile,
			},
		},
		Action: r.TUI,
	}
}

// positiveID parses a movie id argument.
func positiveID(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive integer, got %q", shared.ErrInvalidArgument, arg)
	}
	return id, nil
}
