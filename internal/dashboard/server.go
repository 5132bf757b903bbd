package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"cratedig/internal/config"
	"cratedig/internal/extract"
	"cratedig/internal/library"
	"cratedig/internal/logging"
	"cratedig/internal/musicapi"
	"cratedig/internal/recommend"
)

// Syncer kicks off library sync runs on behalf of dashboard clients.
type Syncer interface {
	SyncAll(ctx context.Context, opts extract.Options) (*extract.Report, error)
}

// Recommender ranks suggestions for a seed playlist.
type Recommender interface {
	ForPlaylist(ctx context.Context, seed []musicapi.Track, opts recommend.Options) ([]recommend.Recommendation, error)
}

// Server exposes the library over HTTP for the web dashboard.
type Server struct {
	bind        string
	cfg         *config.Config
	store       *library.Store
	syncer      Syncer
	recommender Recommender
	logger      *slog.Logger

	mux      *http.ServeMux
	server   *http.Server
	stopOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
	syncing  bool
	lastSync *extract.Report
}

// New builds the dashboard server. syncer and recommender may be nil when the
// daemon runs without API credentials; the affected endpoints then answer 503.
func New(cfg *config.Config, store *library.Store, syncer Syncer, recommender Recommender, logger *slog.Logger) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("dashboard: config and store are required")
	}
	bind := strings.TrimSpace(cfg.Dashboard.Bind)
	if bind == "" {
		return nil, errors.New("dashboard: bind address is required")
	}

	srv := &Server{
		bind:        bind,
		cfg:         cfg,
		store:       store,
		syncer:      syncer,
		recommender: recommender,
		logger:      logging.NewComponentLogger(logger, "dashboard"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/playlists", srv.handlePlaylists)
	mux.HandleFunc("/api/playlists/", srv.handlePlaylist)
	mux.HandleFunc("/api/sync", srv.handleSync)
	srv.mux = mux

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving and shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("dashboard listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down. It is safe to call more than once and
// concurrently with the ctx-cancel shutdown started by Start.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.listener != nil {
			_ = s.listener.Close()
			s.listener = nil
		}
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
