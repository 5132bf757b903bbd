package config

import (
	"fmt"
	"net/url"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSpotify()
	c.normalizeLogging()
	c.Dashboard.Bind = strings.TrimSpace(c.Dashboard.Bind)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	c.Spotify.RedirectURL = strings.TrimSpace(c.Spotify.RedirectURL)
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = "console"
	}
	c.Logging.Format = format
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// RedirectAddr returns the host:port the OAuth callback server must listen on,
// derived from the redirect URL.
func (c *Config) RedirectAddr() (string, error) {
	parsed, err := url.Parse(c.Spotify.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("parse spotify.redirect_url: %w", err)
	}
	host := parsed.Host
	if host == "" {
		return "", fmt.Errorf("spotify.redirect_url %q has no host", c.Spotify.RedirectURL)
	}
	if parsed.Port() == "" {
		switch parsed.Scheme {
		case "https":
			host += ":443"
		default:
			host += ":80"
		}
	}
	return host, nil
}

// RedirectCallbackPath returns the URL path of the OAuth callback endpoint.
func (c *Config) RedirectCallbackPath() string {
	parsed, err := url.Parse(c.Spotify.RedirectURL)
	if err != nil || parsed.Path == "" {
		return "/callback"
	}
	return parsed.Path
}
