package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Upload      UploadConfig      `toml:"upload"`
	API         APIConfig         `toml:"api"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig contains the Google OAuth client and the owner channel.
//
// The token fields are only written by the CLI login flow; the web app keeps its tokens in the session.
type YouTubeConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	ChannelID    string    `toml:"channel_id"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	Expiry       time.Time `toml:"expiry"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionSecret string `toml:"session_secret"`
	SessionStore  string `toml:"session_store"` // "sqlite" or "cookie"
	SessionMaxAge int    `toml:"session_max_age"`
	SecureCookies bool   `toml:"secure_cookies"`
}

// UploadConfig contains the metadata policy for uploaded videos.
type UploadConfig struct {
	Dir                string   `toml:"dir"`
	AllowedExtensions  []string `toml:"allowed_extensions"`
	Privacy            string   `toml:"privacy"`
	Tags               []string `toml:"tags"`
	CategoryID         string   `toml:"category_id"`
	ChunkSizeMB        int      `toml:"chunk_size_mb"`
	ChunkRetryDeadline string   `toml:"chunk_retry_deadline"`
	MaxFormMB          int64    `toml:"max_form_mb"`
}

// APIConfig contains outbound call settings for the YouTube Data API.
type APIConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	CommentWorkers    int     `toml:"comment_workers"`
}

// Addr returns the host:port the web server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RetryDeadline parses ChunkRetryDeadline, falling back to one minute.
func (u UploadConfig) RetryDeadline() time.Duration {
	d, err := time.ParseDuration(u.ChunkRetryDeadline)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// ChunkSize returns the upload chunk size in bytes.
func (u UploadConfig) ChunkSize() int {
	if u.ChunkSizeMB <= 0 {
		return 8 << 20
	}
	return u.ChunkSizeMB << 20
}

// Token returns the stored CLI token, or nil when the CLI has not logged in.
func (y YouTubeConfig) Token() *oauth2.Token {
	if y.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  y.AccessToken,
		RefreshToken: y.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       y.Expiry,
	}
}

// Update stores token in the YouTube credentials, keeping the previous refresh token when the new one omits it.
func (y *YouTubeConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}
	y.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		y.RefreshToken = token.RefreshToken
	}
	y.Expiry = token.Expiry
	return nil
}

// Clear removes the stored CLI token.
func (y *YouTubeConfig) Clear() {
	y.AccessToken = ""
	y.RefreshToken = ""
	y.Expiry = time.Time{}
}

// Validate checks the settings every entry point needs.
func (c *Config) Validate() error {
	if c.Credentials.YouTube.ClientID == "" || c.Credentials.YouTube.ClientSecret == "" {
		return fmt.Errorf("%w: credentials.youtube.client_id and client_secret must be set", ErrMissingCredentials)
	}
	switch c.Server.SessionStore {
	case "", "sqlite", "cookie":
	default:
		return fmt.Errorf("%w: unknown session_store %q", ErrInvalidConfig, c.Server.SessionStore)
	}
	switch c.Upload.Privacy {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("%w: unknown upload privacy %q", ErrInvalidConfig, c.Upload.Privacy)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
