package musicapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"cratedig/internal/config"
	"cratedig/internal/logging"
)

var apiScopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserTopRead,
}

// Authenticator runs the interactive OAuth authorization-code flow: it serves
// the configured redirect URL on localhost, sends the user to the Spotify
// consent page, and caches the resulting token on disk.
type Authenticator struct {
	cfg    *config.Config
	auth   *spotifyauth.Authenticator
	logger *slog.Logger

	// openURL is swapped in tests.
	openURL func(string) error
}

// NewAuthenticator validates credentials and prepares the login flow.
func NewAuthenticator(cfg *config.Config, logger *slog.Logger) (*Authenticator, error) {
	if cfg == nil {
		return nil, errors.New("authenticator requires config")
	}
	if !cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	return &Authenticator{
		cfg: cfg,
		auth: spotifyauth.New(
			spotifyauth.WithClientID(cfg.Spotify.ClientID),
			spotifyauth.WithClientSecret(cfg.Spotify.ClientSecret),
			spotifyauth.WithRedirectURL(cfg.Spotify.RedirectURL),
			spotifyauth.WithScopes(apiScopes...),
		),
		logger:  logging.NewComponentLogger(logger, "auth"),
		openURL: OpenBrowser,
	}, nil
}

type authResult struct {
	token *oauth2.Token
	err   error
}

// Login walks the user through authorization and returns the authenticated
// account. The flow is aborted when ctx is canceled.
func (a *Authenticator) Login(ctx context.Context) (*User, error) {
	addr, err := a.cfg.RedirectAddr()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s for OAuth callback: %w", addr, err)
	}

	state, err := newState()
	if err != nil {
		listener.Close()
		return nil, err
	}

	// Only the first callback outcome matters; later callbacks must not
	// block their handlers once the buffer is taken.
	results := make(chan authResult, 1)
	deliver := func(res authResult) {
		select {
		case results <- res:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(a.cfg.RedirectCallbackPath(), func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("state"); got != state {
			http.NotFound(w, r)
			deliver(authResult{err: fmt.Errorf("oauth state mismatch")})
			return
		}
		tok, err := a.auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "Couldn't complete login", http.StatusForbidden)
			deliver(authResult{err: fmt.Errorf("exchange code: %w", err)})
			return
		}
		fmt.Fprint(w, "Login complete. You can close this window.")
		deliver(authResult{token: tok})
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("callback server stopped", logging.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	url := a.auth.AuthURL(state)
	a.logger.Info("waiting for Spotify authorization", logging.String("url", url))
	if err := a.openURL(url); err != nil {
		a.logger.Warn("could not open browser; visit the URL manually", logging.Error(err))
	}

	var token *oauth2.Token
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		token = res.token
	}

	if err := SaveToken(a.cfg.TokenPath(), token); err != nil {
		return nil, err
	}

	client := spotify.New(httpClientForToken(ctx, a.cfg, token))
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}

	a.logger.Info("authenticated", logging.String("user", user.ID))
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
