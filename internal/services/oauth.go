package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// Scopes are the OAuth scopes requested at login: uploads plus full account management.
var Scopes = []string{youtube.YoutubeUploadScope, youtube.YoutubeForceSslScope}

// OAuthService runs the Google authorization-code flow for YouTube.
type OAuthService struct {
	config *oauth2.Config
}

// NewOAuthService creates an [OAuthService] from the configured Google client.
//
// redirectURI overrides the configured redirect when non-empty (the CLI listens on its own port).
func NewOAuthService(cfg shared.YouTubeConfig, redirectURI string) (*OAuthService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}
	if redirectURI == "" {
		redirectURI = cfg.RedirectURI
	}

	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
	}, nil
}

// Config returns the underlying OAuth client configuration.
func (s *OAuthService) Config() *oauth2.Config {
	return s.config
}

// GetAuthURL returns the consent page URL. Offline access is requested so a refresh token is issued.
func (s *OAuthService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a [models.TokenBundle].
func (s *OAuthService) Exchange(ctx context.Context, code string) (*models.TokenBundle, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, &shared.AuthenticationError{Err: fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)}
	}
	return models.NewTokenBundle(s.config, token), nil
}
