package extract

import (
	"context"
	"strings"
	"testing"

	"cratedig/internal/musicapi"
	"cratedig/internal/testsupport"
)

func newFixture(t *testing.T) (*Extractor, *testsupport.FakeService) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	svc := &testsupport.FakeService{
		PlaylistList: []musicapi.Playlist{
			{ID: "pl-1", Name: "Morning Drive", SnapshotID: "snap-1", TrackTotal: 2},
			{ID: "pl-2", Name: "Late Night", SnapshotID: "snap-2", TrackTotal: 1},
		},
		TracksByList: map[string][]musicapi.Track{
			"pl-1": {
				{ID: "t-1", Name: "First", Artists: []musicapi.Artist{{Name: "Alpha"}}},
				{ID: "t-2", Name: "Second", Artists: []musicapi.Artist{{Name: "Beta"}}},
			},
			"pl-2": {
				{ID: "t-3", Name: "Third", Artists: []musicapi.Artist{{Name: "Gamma"}}},
			},
		},
		Features: map[string]*musicapi.AudioFeatures{
			"t-1": {Energy: 0.8, Danceability: 0.9},
			"t-3": {Energy: 0.2, Acousticness: 0.9},
		},
	}
	return New(svc, store, nil), svc
}

func TestSyncAllStoresPlaylistsAndFeatures(t *testing.T) {
	extractor, _ := newFixture(t)
	ctx := context.Background()

	report, err := extractor.SyncAll(ctx, Options{})
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if report.Playlists != 2 || report.Synced != 2 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Tracks != 3 {
		t.Fatalf("expected 3 tracks synced, got %d", report.Tracks)
	}
	if report.RunID == "" {
		t.Fatal("expected a run id")
	}

	tracks, err := extractor.store.Tracks(ctx, "pl-1")
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 stored tracks, got %d", len(tracks))
	}
	if tracks[0].Features == nil || tracks[0].Features.Energy != 0.8 {
		t.Fatalf("expected features attached to stored track, got %+v", tracks[0].Features)
	}
	// t-2 has no analysis data and must survive featureless.
	if tracks[1].Features != nil {
		t.Fatalf("expected t-2 featureless, got %+v", tracks[1].Features)
	}
}

func TestSyncAllSkipsUnchangedSnapshots(t *testing.T) {
	extractor, svc := newFixture(t)
	ctx := context.Background()

	if _, err := extractor.SyncAll(ctx, Options{}); err != nil {
		t.Fatalf("first SyncAll: %v", err)
	}
	svc.Calls = nil

	report, err := extractor.SyncAll(ctx, Options{})
	if err != nil {
		t.Fatalf("second SyncAll: %v", err)
	}
	if report.Skipped != 2 || report.Synced != 0 {
		t.Fatalf("expected all playlists skipped: %+v", report)
	}
	for _, call := range svc.Calls {
		if strings.HasPrefix(call, "PlaylistTracks") {
			t.Fatalf("unchanged playlist refetched: %v", svc.Calls)
		}
	}
}

func TestSyncAllForceResyncs(t *testing.T) {
	extractor, _ := newFixture(t)
	ctx := context.Background()

	if _, err := extractor.SyncAll(ctx, Options{}); err != nil {
		t.Fatalf("first SyncAll: %v", err)
	}
	report, err := extractor.SyncAll(ctx, Options{Force: true})
	if err != nil {
		t.Fatalf("forced SyncAll: %v", err)
	}
	if report.Synced != 2 || report.Skipped != 0 {
		t.Fatalf("expected forced resync of both playlists: %+v", report)
	}
}

func TestSyncAllPrunesDeletedPlaylists(t *testing.T) {
	extractor, svc := newFixture(t)
	ctx := context.Background()

	if _, err := extractor.SyncAll(ctx, Options{}); err != nil {
		t.Fatalf("first SyncAll: %v", err)
	}

	svc.PlaylistList = svc.PlaylistList[:1]
	report, err := extractor.SyncAll(ctx, Options{})
	if err != nil {
		t.Fatalf("second SyncAll: %v", err)
	}
	if report.Pruned != 1 {
		t.Fatalf("expected 1 pruned playlist, got %d", report.Pruned)
	}
	if _, err := extractor.store.GetPlaylist(ctx, "pl-2"); err == nil {
		t.Fatal("expected pl-2 pruned from library")
	}
}

func TestSyncPlaylistByName(t *testing.T) {
	extractor, _ := newFixture(t)
	ctx := context.Background()

	report, err := extractor.SyncPlaylist(ctx, "late night", Options{})
	if err != nil {
		t.Fatalf("SyncPlaylist: %v", err)
	}
	if report.Synced != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	pl, err := extractor.store.GetPlaylist(ctx, "pl-2")
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if pl.Name != "Late Night" {
		t.Fatalf("unexpected playlist: %+v", pl)
	}

	if _, err := extractor.SyncPlaylist(ctx, "no-such", Options{}); err == nil {
		t.Fatal("expected error for unknown playlist")
	}
}
