package main

import (
	"context"
	"errors"
	"log/slog"

	"cratedig/internal/config"
	"cratedig/internal/daemon"
	"cratedig/internal/dashboard"
	"cratedig/internal/extract"
	"cratedig/internal/library"
	"cratedig/internal/logging"
	"cratedig/internal/musicapi"
	"cratedig/internal/recommend"
)

// buildExtractor wires the music API client into an extractor. A missing
// login or missing credentials is not fatal: the daemon then serves the
// existing library read-only.
func buildExtractor(ctx context.Context, cfg *config.Config, store *library.Store, logger *slog.Logger) (*extract.Extractor, musicapi.Service) {
	client, err := musicapi.NewClient(ctx, cfg, logger)
	if err != nil {
		switch {
		case errors.Is(err, musicapi.ErrMissingCredentials):
			logger.Warn("spotify credentials not configured; sync disabled")
		case errors.Is(err, musicapi.ErrNotAuthenticated):
			logger.Warn("not logged in; sync disabled", logging.String("hint", "run `cratedig login`"))
		default:
			logger.Warn("music API client unavailable; sync disabled", logging.Error(err))
		}
		return nil, nil
	}
	return extract.New(client, store, logger), client
}

// buildDashboard assembles the HTTP server. Sync requests route through the
// daemon so scheduled and requested runs share state; recommendations need a
// live API client.
func buildDashboard(cfg *config.Config, store *library.Store, d *daemon.Daemon, svc musicapi.Service, logger *slog.Logger) (*dashboard.Server, error) {
	var syncer dashboard.Syncer
	var recommender dashboard.Recommender
	if svc != nil {
		syncer = d
		recommender = recommend.New(svc, logger)
	}
	return dashboard.New(cfg, store, syncer, recommender, logger)
}
