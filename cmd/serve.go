package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/ytdash/internal/server"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web dashboard until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Server.Port = int(port)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var db *sql.DB
	if cfg.Server.SessionStore != "cookie" {
		var err error
		if db, err = shared.OpenDatabase(cfg.Database); err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		defer db.Close()
	}

	store, err := web.NewStore(cfg.Server, db, r.logger)
	if err != nil {
		return err
	}

	oauth, err := services.NewOAuthService(cfg.Credentials.YouTube, "")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	app, err := web.New(web.Options{
		Config:  cfg,
		Auth:    oauth,
		Clients: r.clients,
		Store:   store,
		Logger:  r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create web app: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	r.writePlain("→ Serving ytdash on http://%s (session store: %s)\n", srv.Addr, cfg.Server.SessionStore)
	return server.ListenAndServe(ctx, srv, r.logger)
}
