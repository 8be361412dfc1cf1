package web

import (
	"context"
	"net/http"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
)

type accountKey struct{}

// account is the per-request view of the signed-in user.
type account struct {
	ops    tasks.AccountOperations
	client services.Client
	bundle *models.TokenBundle
}

func withAccount(ctx context.Context, acct *account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

func accountFrom(ctx context.Context) *account {
	acct, _ := ctx.Value(accountKey{}).(*account)
	return acct
}

// RequireAuth builds a client for the session's token bundle and makes the account available to next.
//
// Requests without a usable bundle are sent to /login. A refreshed token is written back to the
// session before the response header goes out.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bundle, err := a.tokens.Bundle(r)
		if err != nil {
			a.redirectToLogin(w, r)
			return
		}

		client, err := a.clients(r.Context(), bundle)
		if err != nil {
			if shared.IsAuthError(err) {
				a.logger.Warn("session token unusable", "error", err)
				a.tokens.Clear(w, r)
				a.redirectToLogin(w, r)
				return
			}
			a.logger.Error("failed to build client", "error", err)
			http.Error(w, "YouTube client unavailable", http.StatusInternalServerError)
			return
		}

		acct := &account{
			ops: tasks.NewAccountEngine(client, tasks.Options{
				OwnerChannelID: a.config.Credentials.YouTube.ChannelID,
				CommentWorkers: a.config.API.CommentWorkers,
				Upload:         a.config.Upload,
				Logger:         a.logger,
			}),
			client: client,
			bundle: bundle,
		}

		tw := &tokenWriter{ResponseWriter: w}
		tw.beforeWrite = func() { a.writeBackToken(w, r, acct) }

		next.ServeHTTP(tw, r.WithContext(withAccount(r.Context(), acct)))
	})
}

// writeBackToken stores a refreshed access token in the session.
func (a *App) writeBackToken(w http.ResponseWriter, r *http.Request, acct *account) {
	token, err := acct.client.Token()
	if err != nil || token == nil || token.AccessToken == acct.bundle.AccessToken {
		return
	}

	acct.bundle.SetToken(token)
	if err := a.tokens.Store(w, r, acct.bundle); err != nil {
		a.logger.Warn("failed to store refreshed token", "error", err)
		return
	}
	a.logger.Debug("stored refreshed token", "expiry", token.Expiry)
}

// handleAuthError clears the session and redirects to login when err is an authentication failure.
func (a *App) handleAuthError(w http.ResponseWriter, r *http.Request, err error) bool {
	if !shared.IsAuthError(err) {
		return false
	}
	a.logger.Warn("authentication failed, signing out", "error", err)
	if tw, ok := w.(*tokenWriter); ok {
		tw.done = true
	}
	a.tokens.Clear(w, r)
	a.redirectToLogin(w, r)
	return true
}

// redirectToLogin redirects the browser, or asks HTMX to, so partial swaps do not embed the login page.
func (a *App) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// tokenWriter runs beforeWrite once, just before the header is sent.
type tokenWriter struct {
	http.ResponseWriter
	beforeWrite func()
	done        bool
}

func (t *tokenWriter) fire() {
	if t.done {
		return
	}
	t.done = true
	t.beforeWrite()
}

func (t *tokenWriter) WriteHeader(status int) {
	t.fire()
	t.ResponseWriter.WriteHeader(status)
}

func (t *tokenWriter) Write(b []byte) (int, error) {
	t.fire()
	return t.ResponseWriter.Write(b)
}

func (t *tokenWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
