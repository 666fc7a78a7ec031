// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags are shared by every command that prints catalog data.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv or markdown",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "page",
		Usage: "Result page (20 titles per page)",
		Value: 1,
	}
}

func withFlags(base []cli.Flag, extra ...cli.Flag) []cli.Flag {
	return append(base, extra...)
}

// setupCommand handles first run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the credential database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with a username and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password",
						Sources: cli.EnvVars("STREAMZ_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username"},
					&cli.StringFlag{Name: "email", Usage: "Email address"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password", Sources: cli.EnvVars("STREAMZ_PASSWORD")},
					&cli.StringFlag{Name: "confirm", Usage: "Password confirmation (defaults to --password)"},
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.IntFlag{Name: "plan", Usage: "Subscription plan id (see 'streamz plans')"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the stored token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Validate the stored token and show the session",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// profileCommand reads and edits the current user.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update the signed-in user",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Fetch the current profile",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Patch profile fields; only the flags given are sent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address"},
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.IntFlag{Name: "plan", Usage: "Subscription plan id"},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// plansCommand lists subscription plans.
func plansCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "plans",
		Usage:  "List subscription plans",
		Flags:  outputFlags(),
		Action: r.Plans,
	}
}

// browseCommand handles catalog listings.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"ls"},
		Usage:   "List catalog titles",
		Commands: []*cli.Command{
			{
				Name:   "movies",
				Usage:  "List movies",
				Flags:  withFlags(outputFlags(), pageFlag()),
				Action: r.BrowseType,
			},
			{
				Name:   "series",
				Usage:  "List series",
				Flags:  withFlags(outputFlags(), pageFlag()),
				Action: r.BrowseType,
			},
			{
				Name:   "documentaries",
				Usage:  "List documentaries",
				Flags:  withFlags(outputFlags(), pageFlag()),
				Action: r.BrowseType,
			},
			{
				Name:   "trending",
				Usage:  "Most watched titles of the last 7 days",
				Flags:  outputFlags(),
				Action: r.BrowseTrending,
			},
			{
				Name:    "recommendations",
				Aliases: []string{"recommended"},
				Usage:   "Titles picked from your watch history and genre preferences",
				Flags:   outputFlags(),
				Action:  r.BrowseRecommendations,
			},
			{
				Name:   "continue",
				Usage:  "Titles you started but did not finish",
				Flags:  outputFlags(),
				Action: r.BrowseContinue,
			},
			{
				Name:   "history",
				Usage:  "Your watch history",
				Flags:  outputFlags(),
				Action: r.BrowseHistory,
			},
			{
				Name:   "genres",
				Usage:  "List genres",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.BrowseGenres,
			},
			{
				Name:  "search",
				Usage: "Search the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: withFlags(outputFlags(),
					pageFlag(),
					&cli.StringFlag{Name: "type", Usage: "Content type: movie, series or documentary"},
					&cli.IntFlag{Name: "year", Usage: "Release year"},
					&cli.IntFlag{Name: "genre", Usage: "Genre id"},
				),
				Action: r.BrowseSearch,
			},
		},
	}
}

// contentCommand shows one title.
func contentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "content",
		Usage: "Show a title with its episodes",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
		},
		Action: r.ContentShow,
	}
}

// genreCommand sends genre feedback that drives recommendations.
func genreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genre",
		Usage: "Tune recommendations",
		Commands: []*cli.Command{
			{
				Name:      "like",
				Usage:     "Raise a genre's preference score",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.GenreLike,
			},
			{
				Name:      "dislike",
				Usage:     "Lower a genre's preference score",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.GenreDislike,
			},
		},
	}
}

// playCommand opens the player for one title.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a title and report watch progress",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "episode",
				Aliases: []string{"e"},
				Usage:   "Episode id to play instead of the title",
			},
			&cli.IntFlag{
				Name:  "duration",
				Usage: "Length in seconds for titles without one (defaults to player.default_duration)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Also hand the video file to an external player",
			},
			&cli.StringFlag{
				Name:  "player",
				Usage: "External player command for --open (default: platform opener)",
			},
		},
		Action: r.Play,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse and play titles in the terminal",
		Action:  r.TUI,
	}
}

// devCommand runs local development helpers.
func devCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Development helpers",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run an in-memory backend with a seeded catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "host", Usage: "Listen host (default: dev.host)"},
					&cli.IntFlag{Name: "port", Usage: "Listen port (default: dev.port)"},
				},
				Action: r.DevServe,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the backend with the session token",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a path below the base URL, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a path below the base URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "streamz",
		Usage:    "Browse and watch the streaming catalog from the terminal",
		Version:  "0.1.0",
		Writer:   r.output,
		Commands: r.register(),
	}
}
