// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// listFlags are shared by every listing command.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format: csv, md or text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the --format export to this file",
		},
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the session database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml template to --config",
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles the Google OAuth flow for the CLI.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with Google and store the token in config.toml",
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the stored token and the channel it belongs to",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Do not call the API to resolve the channel",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored token from config.toml",
				Action: r.AuthLogout,
			},
		},
	}
}

// videosCommand lists the channel's uploads.
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "videos",
		Usage: "Uploaded videos",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every video in the uploads playlist",
				Flags:  listFlags(),
				Action: r.VideosList,
			},
		},
	}
}

// commentsCommand lists and deletes the owner's comments.
func commentsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "comments",
		Usage: "Your comments on videos from your activity feed",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your top-level comments",
				Flags:  listFlags(),
				Action: r.CommentsList,
			},
			{
				Name:      "delete",
				Usage:     "Delete comments by id",
				ArgsUsage: "<comment-id>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the result as JSON",
					},
				},
				Action: r.CommentsDelete,
			},
		},
	}
}

// likesCommand lists and removes liked videos.
func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "likes",
		Usage: "Videos you liked",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every video in the likes playlist",
				Flags:  listFlags(),
				Action: r.LikesList,
			},
			{
				Name:      "remove",
				Usage:     "Remove the like from videos by id",
				ArgsUsage: "<video-id>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the result as JSON",
					},
				},
				Action: r.LikesRemove,
			},
		},
	}
}

// playlistsCommand lists the account's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "Your playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: append(listFlags(), &cli.StringSliceFlag{
					Name:  "exclude",
					Usage: "Hide these playlist ids from the listing (nothing is deleted)",
				}),
				Action: r.PlaylistsList,
			},
		},
	}
}

// uploadCommand uploads a local video.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a video file with the configured privacy, tags and category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the video file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Video title",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Video description",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
		},
		Action: r.Upload,
	}
}

// serveCommand runs the web app.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive account management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Action:  r.TUI,
	}
}
