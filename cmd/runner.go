package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/formatter"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	loaded     bool
	clients    services.ClientFactory
	ownClients bool
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config is used as is instead of reading --config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Clients    services.ClientFactory
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		loaded:     loaded,
		clients:    opts.Clients,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.ownClients {
		r.clients = r.clientOptions().Factory()
	}
}

func (r *Runner) clientOptions() services.ClientOptions {
	return services.ClientOptions{
		RequestsPerSecond:  r.config.API.RequestsPerSecond,
		Burst:              r.config.API.Burst,
		ChunkSize:          r.config.Upload.ChunkSize(),
		ChunkRetryDeadline: r.config.Upload.RetryDeadline(),
		Logger:             r.logger,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "ytdash",
		Usage:   "Manage the uploads, comments, likes and playlists of your YouTube account",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, videosCommand, commentsCommand, likesCommand, playlistsCommand, uploadCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads config.toml (falling back to the embedded defaults), applies environment overrides
// and builds the client factory.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if !r.loaded {
		r.configPath = cmd.String("config")
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		case err != nil:
			return ctx, err
		default:
			r.config = config
		}
		if err := shared.ApplyEnv(r.config); err != nil {
			return ctx, err
		}
		r.loaded = true
	}

	if r.clients == nil {
		r.clients = r.clientOptions().Factory()
		r.ownClients = true
	}
	return ctx, nil
}

// withAccount runs fn against an engine for the token stored by `ytdash auth login`.
//
// A token refreshed while fn ran is saved back to the config file.
func (r *Runner) withAccount(ctx context.Context, fn func(engine *tasks.AccountEngine) error) error {
	yt := &r.config.Credentials.YouTube
	token := yt.Token()
	if token == nil {
		return &shared.AuthenticationError{Err: fmt.Errorf("no stored token in %s", r.configPath)}
	}

	oauth, err := services.NewOAuthService(*yt, "")
	if err != nil {
		return err
	}

	client, err := r.clients(ctx, models.NewTokenBundle(oauth.Config(), token))
	if err != nil {
		return err
	}

	engine := tasks.NewAccountEngine(client, tasks.Options{
		OwnerChannelID: yt.ChannelID,
		CommentWorkers: r.config.API.CommentWorkers,
		Upload:         r.config.Upload,
		Logger:         r.logger,
	})

	defer r.saveRefreshedToken(client)
	return fn(engine)
}

func (r *Runner) saveRefreshedToken(client services.Client) {
	token, err := client.Token()
	yt := &r.config.Credentials.YouTube
	if err != nil || token == nil || token.AccessToken == yt.AccessToken {
		return
	}
	if err := yt.Update(token); err != nil {
		r.logger.Warn("failed to update refreshed token", "error", err)
		return
	}
	if r.configPath == "" {
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "path", r.configPath, "error", err)
		return
	}
	r.logger.Debug("saved refreshed token", "path", r.configPath, "expiry", token.Expiry)
}

// writeListing renders a listing as JSON (--json), an export format (--format, optionally to --output)
// or plain numbered lines.
func (r *Runner) writeListing(cmd *cli.Command, listing *formatter.Listing, data any) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	if f := cmd.String("format"); f != "" {
		format, err := formatter.ParseFormat(f)
		if err != nil {
			return err
		}

		if path := cmd.String("output"); path != "" {
			written, err := formatter.WriteExport(listing, format, path)
			if err != nil {
				return err
			}
			r.logger.Info("exported listing", "path", written, "items", listing.Len())
			return r.writePlain("✓ Exported %d item(s) to %s\n", listing.Len(), written)
		}

		out, err := formatter.Export(listing, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", listing.Title, listing.Len()))
	for i, row := range listing.Rows {
		r.writePlain("%d. %s\n", i+1, row[1])
		r.writePlain("   ID: %s\n", row[0])
		for j, col := range row[2:] {
			if col != "" {
				r.writePlain("   %s: %s\n", listing.Headers[j+2], col)
			}
		}
	}
	return nil
}

// listingResult reports a listing error after whatever was gathered has been written.
func (r *Runner) listingResult(kind string, count int, err error) error {
	if err == nil {
		return nil
	}
	if shared.IsAuthError(err) {
		return err
	}
	r.logger.Warn("listing incomplete", "kind", kind, "count", count, "error", err)
	return fmt.Errorf("%s listing incomplete: %w", kind, err)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
