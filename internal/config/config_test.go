package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cratedig/internal/config"
)

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("SPOTIFY_REDIRECT_URI", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Spotify.ClientID != "env-id" || cfg.Spotify.ClientSecret != "env-secret" {
		t.Fatalf("expected credentials from env, got %+v", cfg.Spotify)
	}
	if !cfg.HasCredentials() {
		t.Fatal("expected HasCredentials with env overrides")
	}
	if cfg.Spotify.RedirectURL != "http://127.0.0.1:8808/callback" {
		t.Fatalf("unexpected redirect url: %q", cfg.Spotify.RedirectURL)
	}
	if cfg.Analysis.HistogramBins != 20 || cfg.Analysis.TopArtists != 5 {
		t.Fatalf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.Recommend.Limit != 10 || cfg.Recommend.MaxCandidates != 500 {
		t.Fatalf("unexpected recommend defaults: %+v", cfg.Recommend)
	}
	if cfg.Dashboard.Bind != "127.0.0.1:8807" {
		t.Fatalf("unexpected dashboard bind: %q", cfg.Dashboard.Bind)
	}

	wantState := filepath.Join(tempHome, ".local", "state", "cratedig")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LibraryDBPath() != filepath.Join(wantState, "library.db") {
		t.Fatalf("unexpected library db path: %q", cfg.LibraryDBPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.StateDir); err != nil {
		t.Fatalf("state dir not created: %v", err)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("SPOTIFY_REDIRECT_URI", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[spotify]
client_id = " file-id "
client_secret = "file-secret"
redirect_url = "http://localhost:9000/cb"

[paths]
state_dir = "` + filepath.Join(dir, "state") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Spotify.ClientID != "file-id" {
		t.Fatalf("expected trimmed client id, got %q", cfg.Spotify.ClientID)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowered logging values, got %+v", cfg.Logging)
	}

	addr, err := cfg.RedirectAddr()
	if err != nil {
		t.Fatalf("RedirectAddr failed: %v", err)
	}
	if addr != "localhost:9000" {
		t.Fatalf("unexpected redirect addr: %q", addr)
	}
	if cfg.RedirectCallbackPath() != "/cb" {
		t.Fatalf("unexpected callback path: %q", cfg.RedirectCallbackPath())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bins", func(c *config.Config) { c.Analysis.HistogramBins = 1 }, "histogram_bins"},
		{"limit", func(c *config.Config) { c.Recommend.Limit = 0 }, "recommend.limit"},
		{"candidates", func(c *config.Config) { c.Recommend.MaxCandidates = 2 }, "max_candidates"},
		{"interval", func(c *config.Config) { c.Sync.IntervalMinutes = 0 }, "interval_minutes"},
		{"format", func(c *config.Config) { c.Logging.Format = "wide" }, "logging.format"},
		{"redirect", func(c *config.Config) { c.Spotify.RedirectURL = "ftp://x" }, "redirect_url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[spotify]") {
		t.Fatal("sample config missing spotify section")
	}
}
