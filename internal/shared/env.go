package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config.toml.
const (
	EnvClientID     = "OAUTH_CLIENT_ID"
	EnvClientSecret = "OAUTH_CLIENT_SECRET"
	EnvChannelID    = "CHANNEL_ID"
	EnvSecretKey    = "SECRET_KEY"
	EnvPort         = "YTDASH_PORT"
)

// LoadEnv reads the given dotenv files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any of the supported environment variables that are set.
func ApplyEnv(config *Config) error {
	if v := os.Getenv(EnvClientID); v != "" {
		config.Credentials.YouTube.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		config.Credentials.YouTube.ClientSecret = v
	}
	if v := os.Getenv(EnvChannelID); v != "" {
		config.Credentials.YouTube.ChannelID = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		config.Server.SessionSecret = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPort, v)
		}
		config.Server.Port = port
	}
	return nil
}
