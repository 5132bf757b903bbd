package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Spotify contains credentials for the Spotify Web API. The client id and
// secret come from a registered application on the Spotify developer
// dashboard. Environment variables SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET
// and SPOTIFY_REDIRECT_URI override the file values.
type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Analysis contains tuning for playlist profiling.
type Analysis struct {
	HistogramBins int `toml:"histogram_bins"`
	TopArtists    int `toml:"top_artists"`
}

// Recommend contains tuning for the recommendation engine.
type Recommend struct {
	Limit         int `toml:"limit"`
	MaxCandidates int `toml:"max_candidates"`
}

// Sync contains settings for library synchronization.
type Sync struct {
	IntervalMinutes int `toml:"interval_minutes"`
	Concurrency     int `toml:"concurrency"`
}

// Dashboard contains settings for the cratedigd HTTP API.
type Dashboard struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cratedig.
type Config struct {
	Spotify   Spotify   `toml:"spotify"`
	Paths     Paths     `toml:"paths"`
	Analysis  Analysis  `toml:"analysis"`
	Recommend Recommend `toml:"recommend"`
	Sync      Sync      `toml:"sync"`
	Dashboard Dashboard `toml:"dashboard"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cratedig/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and credential overrides from the
// environment applied. The boolean reports whether a config file was found.
func Load(path string) (*Config, string, bool, error) {
	// Matches the original tool, which sources credentials from a .env file
	// in the working directory when present.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID")); v != "" {
		c.Spotify.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET")); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("SPOTIFY_REDIRECT_URI")); v != "" {
		c.Spotify.RedirectURL = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cratedig.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HasCredentials reports whether Spotify API credentials are configured.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.Spotify.ClientID) != "" && strings.TrimSpace(c.Spotify.ClientSecret) != ""
}

// TokenPath returns the location of the cached OAuth token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Paths.StateDir, "token.json")
}

// LibraryDBPath returns the location of the library database.
func (c *Config) LibraryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "library.db")
}

// LockPath returns the location of the daemon instance lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "cratedigd.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
