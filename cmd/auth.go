package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/server"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
	"github.com/urfave/cli/v3"
)

// authTimeout bounds how long the CLI waits for the browser consent.
const authTimeout = 2 * time.Minute

// authorizer is the part of [services.OAuthService] the login flow needs.
type authorizer interface {
	server.Exchanger
	GetAuthURL(state string) string
}

// AuthLogin performs the OAuth2 authorization-code flow for YouTube.
//
// Starts a local HTTP server on the configured host and port, opens the browser for consent,
// and saves the exchanged token to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	yt := &r.config.Credentials.YouTube
	if yt.ClientID == "" || yt.ClientSecret == "" {
		return fmt.Errorf("%w: credentials.youtube.client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	oauth, err := services.NewOAuthService(*yt, "")
	if err != nil {
		return fmt.Errorf("failed to create OAuth service: %w", err)
	}

	bundle, err := r.doOAuth(ctx, oauth, callbackPath(yt.RedirectURI))
	if err != nil {
		return err
	}

	if err := yt.Update(bundle.Token()); err != nil {
		return fmt.Errorf("failed to update youtube configuration: %w", err)
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	if bundle.RefreshToken == "" {
		r.writePlain("⚠ No refresh token was issued; you will need to log in again when the token expires.\n")
	}
	r.writePlain("You can now use: ytdash videos list\n")

	return nil
}

// AuthStatus reports whether a token is stored and, unless --offline, which channel it belongs to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.Credentials.YouTube
	token := yt.Token()
	if token == nil {
		r.writePlain("Authentication: ✗ Not authenticated\n")
		r.writePlain("Run 'ytdash auth login' to sign in.\n")
		return nil
	}

	r.writePlain("Authentication: ✓ Token stored in %s\n", r.configPath)
	if !yt.Expiry.IsZero() {
		r.writePlain("Expiry: %s\n", yt.Expiry.Local().Format(time.RFC1123))
	}
	if yt.RefreshToken != "" {
		r.writePlain("Refreshable: yes\n")
	} else {
		r.writePlain("Refreshable: no\n")
	}

	if cmd.Bool("offline") {
		return nil
	}

	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		channel, err := engine.Client().Channel(ctx)
		if err != nil {
			return err
		}
		title := ""
		if channel.Snippet != nil {
			title = channel.Snippet.Title
		}
		r.writePlain("Channel: %s (%s)\n", title, channel.Id)
		if yt.ChannelID != "" && yt.ChannelID != channel.Id {
			r.writePlain("⚠ credentials.youtube.channel_id is %s; comments are filtered by that id.\n", yt.ChannelID)
		}
		return nil
	})
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.config.Credentials.YouTube.Clear()
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return r.writePlain("✓ Signed out; token removed from %s\n", r.configPath)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, auth authorizer, path string) (*models.TokenBundle, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := auth.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(auth, state, path)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:              r.config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe(serverCtx, httpServer, r.logger)
	}()

	r.writePlain("→ Opening browser for Google authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		if err == nil {
			err = shared.ErrServiceUnavailable
		}
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	stopServer()
	if err := <-serverErrors; err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Bundle == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Bundle, nil
}

// callbackPath returns the path of the configured redirect URI, "/authorized" when it has none.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/authorized"
	}
	return u.Path
}
