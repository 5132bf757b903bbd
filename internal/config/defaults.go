package config

import (
	"os"
	"path/filepath"
)

// Default returns a configuration populated with built-in defaults.
func Default() Config {
	return Config{
		Spotify: Spotify{
			RedirectURL: "http://127.0.0.1:8808/callback",
		},
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir(),
		},
		Analysis: Analysis{
			HistogramBins: 20,
			TopArtists:    5,
		},
		Recommend: Recommend{
			Limit:         10,
			MaxCandidates: 500,
		},
		Sync: Sync{
			IntervalMinutes: 60,
			Concurrency:     4,
		},
		Dashboard: Dashboard{
			Bind: "127.0.0.1:8807",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && base != "" {
		return filepath.Join(base, "cratedig")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/cratedig"
	}
	return filepath.Join(home, ".local", "state", "cratedig")
}

func defaultLogDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && base != "" {
		return filepath.Join(base, "cratedig", "logs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/cratedig/logs"
	}
	return filepath.Join(home, ".cache", "cratedig", "logs")
}
