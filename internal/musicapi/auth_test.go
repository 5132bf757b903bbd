package musicapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cratedig/internal/config"
)

func newAuthTestConfig(t *testing.T) *config.Config {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve callback port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := config.Default()
	cfg.Spotify.ClientID = "test-client"
	cfg.Spotify.ClientSecret = "test-secret"
	cfg.Spotify.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/callback", port)
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
	return &cfg
}

func TestLoginRejectsMismatchedStateWithoutStallingCallbacks(t *testing.T) {
	cfg := newAuthTestConfig(t)
	a, err := NewAuthenticator(cfg, nil)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	serving := make(chan struct{})
	gate := make(chan struct{})
	a.openURL = func(string) error {
		close(serving)
		<-gate
		return nil
	}

	errs := make(chan error, 1)
	go func() {
		_, loginErr := a.Login(context.Background())
		errs <- loginErr
	}()

	<-serving
	client := &http.Client{Timeout: 2 * time.Second}
	callback := cfg.Spotify.RedirectURL + "?state=wrong"
	for i := 0; i < 2; i++ {
		resp, err := client.Get(callback)
		if err != nil {
			t.Fatalf("callback request %d stalled: %v", i+1, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("callback request %d: expected 404, got %d", i+1, resp.StatusCode)
		}
	}
	close(gate)

	select {
	case err := <-errs:
		if err == nil || !strings.Contains(err.Error(), "state mismatch") {
			t.Fatalf("expected state mismatch error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return")
	}
}

func TestLoginAbortsOnContextCancel(t *testing.T) {
	cfg := newAuthTestConfig(t)
	a, err := NewAuthenticator(cfg, nil)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	a.openURL = func(string) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, loginErr := a.Login(ctx)
		errs <- loginErr
	}()

	cancel()
	select {
	case err := <-errs:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return after cancel")
	}
}
