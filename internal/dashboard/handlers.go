package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cratedig/internal/analysis"
	"cratedig/internal/extract"
	"cratedig/internal/library"
	"cratedig/internal/logging"
	"cratedig/internal/musicapi"
	"cratedig/internal/recommend"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	payload := StatusResponse{
		Library:  stats,
		Syncing:  s.syncing,
		LastSync: s.lastSync,
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playlists, err := s.store.Playlists(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, PlaylistListResponse{Playlists: playlists})
}

// handlePlaylist dispatches /api/playlists/{id} and its subresources.
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/playlists/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(sub, "/") {
		s.writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	pl, tracks, ok := s.loadPlaylist(w, r.Context(), id)
	if !ok {
		return
	}

	switch sub {
	case "":
		s.writeJSON(w, http.StatusOK, PlaylistDetailResponse{Playlist: *pl, Tracks: tracks})
	case "profile":
		profile := analysis.Analyze(pl.Name, tracks, analysis.Options{TopArtists: s.cfg.Analysis.TopArtists})
		s.writeJSON(w, http.StatusOK, profile)
	case "features":
		s.writeJSON(w, http.StatusOK, FeaturesResponse{
			Histograms:  analysis.Histograms(tracks, s.cfg.Analysis.HistogramBins),
			Correlation: analysis.CorrelationMatrix(tracks),
			Radar:       analysis.RadarPayload(tracks),
		})
	case "recommendations":
		s.serveRecommendations(w, r, tracks)
	default:
		s.writeError(w, http.StatusNotFound, "playlist not found")
	}
}

func (s *Server) loadPlaylist(w http.ResponseWriter, ctx context.Context, id string) (*library.Playlist, []musicapi.Track, bool) {
	pl, err := s.store.FindPlaylist(ctx, id)
	if err != nil {
		if errors.Is(err, library.ErrPlaylistNotFound) {
			s.writeError(w, http.StatusNotFound, "playlist not found")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, nil, false
	}
	tracks, err := s.store.Tracks(ctx, pl.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return pl, tracks, true
}

func (s *Server) serveRecommendations(w http.ResponseWriter, r *http.Request, tracks []musicapi.Track) {
	if s.recommender == nil {
		s.writeError(w, http.StatusServiceUnavailable, "recommendations require API credentials; run `cratedig login`")
		return
	}
	limit := s.cfg.Recommend.Limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	recs, err := s.recommender.ForPlaylist(r.Context(), tracks, recommend.Options{
		Limit:         limit,
		MaxCandidates: s.cfg.Recommend.MaxCandidates,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrNoFeatures) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: recs})
}

// handleSync kicks off a background sync run. Only one run is admitted at a
// time.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.syncer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "sync requires API credentials; run `cratedig login`")
		return
	}

	force := r.URL.Query().Get("force") == "1" || strings.EqualFold(r.URL.Query().Get("force"), "true")

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		s.writeError(w, http.StatusConflict, "sync already running")
		return
	}
	s.syncing = true
	s.mu.Unlock()

	go s.runSync(force)
	s.writeJSON(w, http.StatusAccepted, SyncAccepted{Status: "accepted"})
}

func (s *Server) runSync(force bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := s.syncer.SyncAll(ctx, extract.Options{
		Force:       force,
		Concurrency: s.cfg.Sync.Concurrency,
	})

	s.mu.Lock()
	s.syncing = false
	if report != nil {
		s.lastSync = report
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("background sync failed", logging.Error(err))
		return
	}
	s.logger.Info("background sync finished",
		logging.String(logging.FieldRunID, report.RunID),
		logging.Int("synced", report.Synced))
}
