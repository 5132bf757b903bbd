package musicapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	oauthspotify "golang.org/x/oauth2/spotify"

	"cratedig/internal/config"
)

// LoadToken reads a cached OAuth token from disk. ErrNotAuthenticated is
// returned when no cache exists.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("read token cache: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token cache: %w", err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	return &tok, nil
}

// SaveToken writes the OAuth token to disk with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURL,
		Endpoint:     oauthspotify.Endpoint,
		Scopes:       apiScopes,
	}
}

// persistingSource wraps a token source and rewrites the on-disk cache
// whenever a refresh produces a new access token, so later runs do not repeat
// the interactive flow once the original token expires.
type persistingSource struct {
	src  oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		// Best-effort: an unwritable cache should not fail API calls.
		_ = SaveToken(s.path, tok)
	}
	return tok, nil
}

// httpClientForToken builds a refreshing, cache-persisting HTTP client for
// the given token.
func httpClientForToken(ctx context.Context, cfg *config.Config, tok *oauth2.Token) *http.Client {
	src := oauthConfig(cfg).TokenSource(ctx, tok)
	persisting := &persistingSource{
		src:  oauth2.ReuseTokenSource(tok, src),
		path: cfg.TokenPath(),
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, persisting)
}
