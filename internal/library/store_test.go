package library_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"cratedig/internal/library"
	"cratedig/internal/musicapi"
	"cratedig/internal/testsupport"
)

func samplePlaylist(id, name string) musicapi.Playlist {
	return musicapi.Playlist{
		ID:         id,
		Name:       name,
		Owner:      "tester",
		SnapshotID: "snap-" + id,
		TrackTotal: 2,
	}
}

func sampleTracks() []musicapi.Track {
	return []musicapi.Track{
		{
			ID:         "t1",
			Name:       "Opening",
			Artists:    []musicapi.Artist{{ID: "a1", Name: "First Artist"}},
			Album:      "Album One",
			AlbumID:    "al1",
			DurationMS: 180000,
			Popularity: 61,
			Explicit:   true,
			AddedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Features: &musicapi.AudioFeatures{
				Danceability: 0.8, Energy: 0.7, Valence: 0.6,
				Tempo: 120, Loudness: -7,
			},
		},
		{
			ID:         "t2",
			Name:       "Closing",
			Artists:    []musicapi.Artist{{ID: "a2", Name: "Second Artist"}},
			Album:      "Album Two",
			AlbumID:    "al2",
			DurationMS: 210000,
			Popularity: 40,
		},
	}
}

func TestUpsertPlaylistAndTracksRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pl := samplePlaylist("p1", "Morning Mix")
	syncedAt := time.Now().UTC()
	if err := store.UpsertPlaylist(ctx, pl, syncedAt); err != nil {
		t.Fatalf("UpsertPlaylist failed: %v", err)
	}
	if err := store.ReplaceTracks(ctx, pl.ID, sampleTracks()); err != nil {
		t.Fatalf("ReplaceTracks failed: %v", err)
	}

	got, err := store.GetPlaylist(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlaylist failed: %v", err)
	}
	if got.Name != "Morning Mix" || got.TrackCount != 2 {
		t.Fatalf("unexpected playlist: %+v", got)
	}
	if got.LastSyncedAt.IsZero() {
		t.Fatal("expected sync timestamp to round-trip")
	}

	tracks, err := store.Tracks(ctx, "p1")
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
		t.Fatalf("track order not preserved: %v", tracks)
	}
	if tracks[0].Features == nil || tracks[0].Features.Danceability != 0.8 {
		t.Fatalf("features lost in round trip: %+v", tracks[0].Features)
	}
	if tracks[1].Features != nil {
		t.Fatal("expected nil features for track without analysis")
	}
	if !tracks[0].Explicit || tracks[0].ArtistNames() != "First Artist" {
		t.Fatalf("metadata lost in round trip: %+v", tracks[0])
	}
}

func TestReplaceTracksDropsStaleRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.UpsertPlaylist(ctx, samplePlaylist("p1", "Mix"), time.Now()); err != nil {
		t.Fatalf("UpsertPlaylist failed: %v", err)
	}
	if err := store.ReplaceTracks(ctx, "p1", sampleTracks()); err != nil {
		t.Fatalf("ReplaceTracks failed: %v", err)
	}
	if err := store.ReplaceTracks(ctx, "p1", sampleTracks()[:1]); err != nil {
		t.Fatalf("second ReplaceTracks failed: %v", err)
	}

	tracks, err := store.Tracks(ctx, "p1")
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected stale rows removed, got %d tracks", len(tracks))
	}
}

func TestFindPlaylistByNameCaseInsensitive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.UpsertPlaylist(ctx, samplePlaylist("p1", "Deep Focus"), time.Now()); err != nil {
		t.Fatalf("UpsertPlaylist failed: %v", err)
	}

	byID, err := store.FindPlaylist(ctx, "p1")
	if err != nil || byID.ID != "p1" {
		t.Fatalf("lookup by id failed: %v %+v", err, byID)
	}
	byName, err := store.FindPlaylist(ctx, "deep focus")
	if err != nil || byName.ID != "p1" {
		t.Fatalf("case-insensitive name lookup failed: %v %+v", err, byName)
	}

	if _, err := store.FindPlaylist(ctx, "missing"); !errors.Is(err, library.ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestPrunePlaylistsCascadesTracks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, pl := range []musicapi.Playlist{samplePlaylist("p1", "Keep"), samplePlaylist("p2", "Drop")} {
		if err := store.UpsertPlaylist(ctx, pl, time.Now()); err != nil {
			t.Fatalf("UpsertPlaylist failed: %v", err)
		}
		if err := store.ReplaceTracks(ctx, pl.ID, sampleTracks()); err != nil {
			t.Fatalf("ReplaceTracks failed: %v", err)
		}
	}

	removed, err := store.PrunePlaylists(ctx, []string{"p1"})
	if err != nil {
		t.Fatalf("PrunePlaylists failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 playlist pruned, got %d", removed)
	}

	if _, err := store.GetPlaylist(ctx, "p2"); !errors.Is(err, library.ErrPlaylistNotFound) {
		t.Fatalf("expected p2 removed, got %v", err)
	}
	tracks, err := store.Tracks(ctx, "p2")
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if len(tracks) != 0 {
		t.Fatalf("expected cascade delete of tracks, got %d", len(tracks))
	}
}

func TestOpenPathRejectsMismatchedSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")

	store, err := library.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("rewrite schema version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	if _, err := library.OpenPath(dbPath); !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestStatsCountsFeatures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.UpsertPlaylist(ctx, samplePlaylist("p1", "Mix"), time.Now()); err != nil {
		t.Fatalf("UpsertPlaylist failed: %v", err)
	}
	if err := store.ReplaceTracks(ctx, "p1", sampleTracks()); err != nil {
		t.Fatalf("ReplaceTracks failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Playlists != 1 || stats.Tracks != 2 || stats.TracksWithFeatures != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.LastSyncedAt == nil {
		t.Fatal("expected last synced timestamp")
	}
}
