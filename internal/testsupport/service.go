package testsupport

import (
	"context"
	"fmt"
	"sync"

	"cratedig/internal/musicapi"
)

// FakeService is an in-memory musicapi.Service for tests.
type FakeService struct {
	User          *musicapi.User
	PlaylistList  []musicapi.Playlist
	TracksByList  map[string][]musicapi.Track
	Features      map[string]*musicapi.AudioFeatures
	SearchResults map[string][]musicapi.Track
	Top           []musicapi.Track

	// Err, when set, is returned by every call.
	Err error

	// Calls records invoked operations for assertions. Callers may sync
	// playlists concurrently, so recording is guarded.
	mu    sync.Mutex
	Calls []string
}

var _ musicapi.Service = (*FakeService)(nil)

func (f *FakeService) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// CallLog returns a snapshot of recorded calls.
func (f *FakeService) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.Calls...)
}

func (f *FakeService) CurrentUser(ctx context.Context) (*musicapi.User, error) {
	f.record("CurrentUser")
	if f.Err != nil {
		return nil, f.Err
	}
	if f.User == nil {
		return &musicapi.User{ID: "tester", DisplayName: "Tester"}, nil
	}
	return f.User, nil
}

func (f *FakeService) Playlists(ctx context.Context) ([]musicapi.Playlist, error) {
	f.record("Playlists")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PlaylistList, nil
}

func (f *FakeService) PlaylistTracks(ctx context.Context, playlistID string) ([]musicapi.Track, error) {
	f.record("PlaylistTracks(%s)", playlistID)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TracksByList[playlistID], nil
}

func (f *FakeService) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]*musicapi.AudioFeatures, error) {
	f.record("AudioFeatures(%d)", len(trackIDs))
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[string]*musicapi.AudioFeatures)
	for _, id := range trackIDs {
		if feat, ok := f.Features[id]; ok {
			out[id] = feat
		}
	}
	return out, nil
}

func (f *FakeService) SearchTracks(ctx context.Context, query string, limit int) ([]musicapi.Track, error) {
	f.record("SearchTracks(%s)", query)
	if f.Err != nil {
		return nil, f.Err
	}
	tracks := f.SearchResults[query]
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (f *FakeService) TopTracks(ctx context.Context, limit int) ([]musicapi.Track, error) {
	f.record("TopTracks")
	if f.Err != nil {
		return nil, f.Err
	}
	tracks := f.Top
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// TrackWithFeatures builds a track whose features are already attached.
func TrackWithFeatures(id, name, artist string, features musicapi.AudioFeatures) musicapi.Track {
	return musicapi.Track{
		ID:         id,
		Name:       name,
		Artists:    []musicapi.Artist{{ID: "artist-" + id, Name: artist}},
		Album:      name + " LP",
		AlbumID:    "album-" + id,
		DurationMS: 200_000,
		Popularity: 50,
		Features:   &features,
	}
}
