package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/server"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

// Authenticator runs the Google consent flow. [services.OAuthService] implements it.
type Authenticator interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*models.TokenBundle, error)
}

// Options configures an [App].
type Options struct {
	Config  *shared.Config
	Auth    Authenticator
	Clients services.ClientFactory
	Store   sessions.Store
	Logger  *log.Logger
}

// App is the web front end: one [tasks.AccountEngine] per request, built from the session's token bundle.
type App struct {
	config  *shared.Config
	auth    Authenticator
	clients services.ClientFactory
	tokens  *TokenHolder
	views   *Renderer
	logger  *log.Logger
}

// New creates an [App]. Store and Clients are required.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Store == nil || opts.Clients == nil || opts.Auth == nil {
		return nil, shared.ErrInvalidArgument
	}

	views, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	return &App{
		config:  opts.Config,
		auth:    opts.Auth,
		clients: opts.Clients,
		tokens:  NewTokenHolder(opts.Store),
		views:   views,
		logger:  opts.Logger.WithPrefix("web"),
	}, nil
}

// Routes builds the router with every page, partial and action.
func (a *App) Routes() *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.DefaultMiddleware(a.logger)...)
	router.Use(middleware.NoCache)

	router.HandleFunc(http.MethodGet, "/{$}", a.Index)
	router.HandleFunc(http.MethodGet, "/healthz", a.Health)
	router.HandleFunc(http.MethodGet, "/login", a.Login)
	router.HandleFunc(http.MethodGet, "/authorized", a.Authorized)
	router.HandleFunc(http.MethodGet, "/logout", a.Logout)

	protected := router.With(a.RequireAuth)
	protected.HandleFunc(http.MethodGet, "/dashboard", a.Dashboard)
	protected.HandleFunc(http.MethodGet, "/my_videos", a.MyVideos)
	protected.HandleFunc(http.MethodGet, "/my_comments", a.MyComments)
	protected.HandleFunc(http.MethodGet, "/my_likes", a.MyLikes)
	protected.HandleFunc(http.MethodGet, "/my_saved", a.MySaved)
	protected.HandleFunc(http.MethodGet, "/delete_comment/{id}", a.DeleteComment)
	protected.HandleFunc(http.MethodPost, "/delete_comment/{id}", a.DeleteComment)
	protected.HandleFunc(http.MethodPost, "/delete_selected_comments", a.DeleteSelectedComments)
	protected.HandleFunc(http.MethodPost, "/delete_selected_likes", a.DeleteSelectedLikes)
	protected.HandleFunc(http.MethodPost, "/delete_selected_saved", a.DeleteSelectedSaved)
	protected.HandleFunc(http.MethodGet, "/upload_video", a.UploadForm)
	protected.HandleFunc(http.MethodPost, "/upload_video", a.UploadVideo)

	return router
}
