package testsupport

import (
	"path/filepath"
	"testing"

	"cratedig/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Spotify.ClientID = "test-client"
	cfg.Spotify.ClientSecret = "test-secret"
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Dashboard.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithoutCredentials clears the Spotify credentials on the test config.
func WithoutCredentials() ConfigOption {
	return func(c *config.Config) {
		c.Spotify.ClientID = ""
		c.Spotify.ClientSecret = ""
	}
}
