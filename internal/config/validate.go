package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Spotify credentials are not
// required here: commands that never touch the API (config, status against the
// local library) must work without them. Callers that need the API check
// HasCredentials and fail with guidance.
func (c *Config) Validate() error {
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSpotify() error {
	if c.Spotify.RedirectURL == "" {
		return errors.New("spotify.redirect_url must be set")
	}
	parsed, err := url.Parse(c.Spotify.RedirectURL)
	if err != nil {
		return fmt.Errorf("spotify.redirect_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("spotify.redirect_url must be http or https, got %q", parsed.Scheme)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.HistogramBins < 2 {
		return errors.New("analysis.histogram_bins must be at least 2")
	}
	if c.Analysis.TopArtists < 1 {
		return errors.New("analysis.top_artists must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.Limit < 1 {
		return errors.New("recommend.limit must be at least 1")
	}
	if c.Recommend.MaxCandidates < c.Recommend.Limit {
		return errors.New("recommend.max_candidates must be at least recommend.limit")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.IntervalMinutes < 1 {
		return errors.New("sync.interval_minutes must be at least 1")
	}
	if c.Sync.Concurrency < 1 {
		return errors.New("sync.concurrency must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
