package musicapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/zmb3/spotify/v2"

	"cratedig/internal/logging"
)

func newFakeClient(serverURL string) *Client {
	return &Client{
		api:    spotify.New(http.DefaultClient, spotify.WithBaseURL(serverURL+"/")),
		logger: logging.NewNop(),
	}
}

func writeFakeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode fake response: %v", err)
	}
}

func fakePlaylistJSON(id string) map[string]any {
	return map[string]any{
		"id":            id,
		"name":          "Playlist " + id,
		"owner":         map[string]any{"display_name": "tester", "id": "tester"},
		"snapshot_id":   "snap-" + id,
		"collaborative": false,
		"public":        true,
		"tracks":        map[string]any{"total": 1},
	}
}

func fakeTrackJSON(id string) map[string]any {
	return map[string]any{
		"type":         "track",
		"id":           id,
		"name":         "Track " + id,
		"artists":      []map[string]any{{"id": "a-" + id, "name": "Artist " + id}},
		"album":        map[string]any{"id": "al-" + id, "name": "Album " + id},
		"duration_ms":  200000,
		"popularity":   55,
		"track_number": 1,
		"explicit":     false,
	}
}

func fakeFeaturesJSON(id string) map[string]any {
	return map[string]any{
		"id":               id,
		"danceability":     0.5,
		"energy":           0.6,
		"valence":          0.7,
		"acousticness":     0.1,
		"instrumentalness": 0.0,
		"liveness":         0.2,
		"speechiness":      0.05,
		"tempo":            121.5,
		"loudness":         -6.5,
	}
}

func TestPlaylistsFollowsPagination(t *testing.T) {
	var offsets []int
	mux := http.NewServeMux()
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		count := 50
		if offset >= 50 {
			count = 3
		}
		items := make([]map[string]any, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, fakePlaylistJSON(fmt.Sprintf("pl-%d", offset+i)))
		}
		writeFakeJSON(t, w, map[string]any{
			"items": items, "limit": 50, "offset": offset, "total": 53,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newFakeClient(server.URL)
	playlists, err := client.Playlists(context.Background())
	if err != nil {
		t.Fatalf("Playlists failed: %v", err)
	}
	if len(playlists) != 53 {
		t.Fatalf("expected 53 playlists across pages, got %d", len(playlists))
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 50 {
		t.Fatalf("expected page offsets [0 50], got %v", offsets)
	}
	if playlists[0].ID != "pl-0" || playlists[0].SnapshotID != "snap-pl-0" {
		t.Fatalf("playlist metadata lost: %+v", playlists[0])
	}
}

func TestPlaylistTracksFollowsPaginationAndSkipsEpisodes(t *testing.T) {
	var offsets []int
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		var items []map[string]any
		if offset == 0 {
			for i := 0; i < 50; i++ {
				items = append(items, map[string]any{
					"added_at": "2026-03-01T12:00:00Z",
					"track":    fakeTrackJSON(fmt.Sprintf("t-%d", i)),
				})
			}
		} else {
			items = []map[string]any{
				{"added_at": "2026-03-02T08:00:00Z", "track": fakeTrackJSON("t-50")},
				{"added_at": "2026-03-02T08:01:00Z", "track": map[string]any{"type": "episode", "id": "ep-1", "name": "Some Episode"}},
				{"added_at": "2026-03-02T08:02:00Z", "track": nil},
			}
		}
		writeFakeJSON(t, w, map[string]any{
			"items": items, "limit": 50, "offset": offset, "total": 53,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newFakeClient(server.URL)
	tracks, err := client.PlaylistTracks(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("PlaylistTracks failed: %v", err)
	}
	if len(offsets) != 2 || offsets[1] != 50 {
		t.Fatalf("expected a second page fetch at offset 50, got %v", offsets)
	}
	if len(tracks) != 51 {
		t.Fatalf("expected 51 tracks after skipping non-track items, got %d", len(tracks))
	}
	if tracks[0].ID != "t-0" || tracks[50].ID != "t-50" {
		t.Fatalf("playlist order not preserved: first=%s last=%s", tracks[0].ID, tracks[50].ID)
	}
	if tracks[0].AddedAt.IsZero() {
		t.Fatal("expected added_at timestamp to be parsed")
	}
}

func TestAudioFeaturesBatchesAtAPILimit(t *testing.T) {
	var batches [][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		batches = append(batches, ids)

		features := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			features = append(features, fakeFeaturesJSON(id))
		}
		writeFakeJSON(t, w, map[string]any{"audio_features": features})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("t-%d", i)
	}

	client := newFakeClient(server.URL)
	features, err := client.AudioFeatures(context.Background(), ids)
	if err != nil {
		t.Fatalf("AudioFeatures failed: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 150 ids to split into 2 requests, got %d", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[1]) != 50 {
		t.Fatalf("expected batch sizes 100 and 50, got %d and %d", len(batches[0]), len(batches[1]))
	}
	if len(features) != 150 {
		t.Fatalf("expected features for all 150 tracks, got %d", len(features))
	}
	if f := features["t-149"]; f == nil || f.Tempo != 121.5 {
		t.Fatalf("feature values lost: %+v", f)
	}
}

func TestAudioFeaturesSkipsEmptyIDs(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeFakeJSON(t, w, map[string]any{"audio_features": []map[string]any{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newFakeClient(server.URL)
	features, err := client.AudioFeatures(context.Background(), []string{"", "", ""})
	if err != nil {
		t.Fatalf("AudioFeatures failed: %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected no request for all-empty ids, got %d", requests)
	}
	if len(features) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(features))
	}
}
