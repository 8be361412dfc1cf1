package models

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenBundle is the credential set needed to call the YouTube Data API on a user's behalf.
//
// It is created by the OAuth callback and lives in the browser session until logout or expiry.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// NewTokenBundle captures token together with the client settings that issued it.
func NewTokenBundle(config *oauth2.Config, token *oauth2.Token) *TokenBundle {
	b := &TokenBundle{
		TokenURI:     config.Endpoint.TokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       append([]string(nil), config.Scopes...),
	}
	b.SetToken(token)
	return b
}

// Token converts the bundle to an [oauth2.Token].
func (b *TokenBundle) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       b.Expiry,
	}
}

// SetToken copies a (possibly refreshed) token into the bundle.
//
// A refresh token is only replaced when the new token carries one.
func (b *TokenBundle) SetToken(token *oauth2.Token) {
	if token == nil {
		return
	}
	b.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		b.RefreshToken = token.RefreshToken
	}
	b.Expiry = token.Expiry
}

// Config rebuilds the OAuth client configuration the bundle was issued for.
func (b *TokenBundle) Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     b.ClientID,
		ClientSecret: b.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: b.TokenURI},
		Scopes:       b.Scopes,
	}
}

// Valid reports whether the bundle can authorize a call, either directly or by refreshing.
func (b *TokenBundle) Valid() bool {
	if b == nil || b.AccessToken == "" {
		return false
	}
	return b.RefreshToken != "" || b.Expiry.IsZero() || time.Now().Before(b.Expiry)
}
