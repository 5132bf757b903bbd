package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cratedig/internal/library"
	"cratedig/internal/logging"
	"cratedig/internal/musicapi"
)

// Options tunes a sync run.
type Options struct {
	// Force resyncs playlists even when their snapshot id is unchanged.
	Force bool
	// Concurrency bounds parallel playlist syncs. Values below 1 fall back
	// to 4.
	Concurrency int
}

// Report summarizes one sync run.
type Report struct {
	RunID     string        `json:"runId"`
	Playlists int           `json:"playlists"`
	Synced    int           `json:"synced"`
	Skipped   int           `json:"skipped"`
	Tracks    int           `json:"tracks"`
	Pruned    int64         `json:"pruned"`
	Duration  time.Duration `json:"duration"`
}

// Extractor pulls the user's playlists and audio features from the music API
// into the local library.
type Extractor struct {
	svc    musicapi.Service
	store  *library.Store
	logger *slog.Logger
}

func New(svc musicapi.Service, store *library.Store, logger *slog.Logger) *Extractor {
	return &Extractor{
		svc:    svc,
		store:  store,
		logger: logging.NewComponentLogger(logger, "extract"),
	}
}

// SyncAll syncs every playlist of the current user, prunes playlists that no
// longer exist remotely, and reports what happened.
func (e *Extractor) SyncAll(ctx context.Context, opts Options) (*Report, error) {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	started := time.Now()
	report := &Report{RunID: uuid.NewString()}
	logger := e.logger.With(logging.String(logging.FieldRunID, report.RunID))
	logger.Info("sync started", logging.Bool("force", opts.Force))

	playlists, err := e.svc.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	report.Playlists = len(playlists)

	keep := make([]string, 0, len(playlists))
	for _, pl := range playlists {
		keep = append(keep, pl.ID)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for _, pl := range playlists {
		group.Go(func() error {
			synced, trackCount, err := e.syncOne(groupCtx, logger, pl, opts.Force)
			if err != nil {
				return fmt.Errorf("sync playlist %s: %w", pl.Name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if synced {
				report.Synced++
				report.Tracks += trackCount
			} else {
				report.Skipped++
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	pruned, err := e.store.PrunePlaylists(ctx, keep)
	if err != nil {
		return nil, fmt.Errorf("prune playlists: %w", err)
	}
	report.Pruned = pruned
	report.Duration = time.Since(started)

	logger.Info("sync finished",
		logging.Int("playlists", report.Playlists),
		logging.Int("synced", report.Synced),
		logging.Int("skipped", report.Skipped),
		logging.Int("tracks", report.Tracks),
		logging.Int64("pruned", report.Pruned),
		logging.Duration("duration", report.Duration))
	return report, nil
}

// SyncPlaylist syncs a single playlist identified by id or name against the
// remote listing.
func (e *Extractor) SyncPlaylist(ctx context.Context, idOrName string, opts Options) (*Report, error) {
	started := time.Now()
	report := &Report{RunID: uuid.NewString(), Playlists: 1}
	logger := e.logger.With(logging.String(logging.FieldRunID, report.RunID))

	pl, err := e.findRemote(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	synced, trackCount, err := e.syncOne(ctx, logger, *pl, opts.Force)
	if err != nil {
		return nil, fmt.Errorf("sync playlist %s: %w", pl.Name, err)
	}
	if synced {
		report.Synced = 1
		report.Tracks = trackCount
	} else {
		report.Skipped = 1
	}
	report.Duration = time.Since(started)
	return report, nil
}

func (e *Extractor) findRemote(ctx context.Context, idOrName string) (*musicapi.Playlist, error) {
	playlists, err := e.svc.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	for i := range playlists {
		if playlists[i].ID == idOrName {
			return &playlists[i], nil
		}
	}
	for i := range playlists {
		if strings.EqualFold(playlists[i].Name, idOrName) {
			return &playlists[i], nil
		}
	}
	return nil, fmt.Errorf("playlist %q: %w", idOrName, library.ErrPlaylistNotFound)
}

// syncOne fetches tracks and audio features for one playlist and stores them.
// An unchanged snapshot id skips the fetch unless force is set.
func (e *Extractor) syncOne(ctx context.Context, logger *slog.Logger, pl musicapi.Playlist, force bool) (bool, int, error) {
	logger = logger.With(logging.String(logging.FieldPlaylistID, pl.ID))

	if !force {
		existing, err := e.store.GetPlaylist(ctx, pl.ID)
		if err != nil && !errors.Is(err, library.ErrPlaylistNotFound) {
			return false, 0, err
		}
		if existing != nil && existing.SnapshotID == pl.SnapshotID && pl.SnapshotID != "" {
			logger.Debug("snapshot unchanged, skipping", logging.String("name", pl.Name))
			return false, 0, nil
		}
	}

	tracks, err := e.svc.PlaylistTracks(ctx, pl.ID)
	if err != nil {
		return false, 0, fmt.Errorf("fetch tracks: %w", err)
	}
	if err := e.attachFeatures(ctx, tracks); err != nil {
		return false, 0, err
	}

	if err := e.store.UpsertPlaylist(ctx, pl, time.Now().UTC()); err != nil {
		return false, 0, fmt.Errorf("store playlist: %w", err)
	}
	if err := e.store.ReplaceTracks(ctx, pl.ID, tracks); err != nil {
		return false, 0, fmt.Errorf("store tracks: %w", err)
	}

	logger.Info("playlist synced",
		logging.String("name", pl.Name),
		logging.Int("tracks", len(tracks)))
	return true, len(tracks), nil
}

// attachFeatures mutates tracks in place with fetched audio features. Tracks
// the API has no analysis for stay featureless.
func (e *Extractor) attachFeatures(ctx context.Context, tracks []musicapi.Track) error {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		if track.Features == nil && track.ID != "" {
			ids = append(ids, track.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	features, err := e.svc.AudioFeatures(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetch audio features: %w", err)
	}
	for i := range tracks {
		if tracks[i].Features == nil {
			tracks[i].Features = features[tracks[i].ID]
		}
	}
	return nil
}
