package musicapi

import "context"

// Service covers the Spotify operations the rest of the repository depends
// on. Client implements it against the live API; tests substitute fakes.
type Service interface {
	CurrentUser(ctx context.Context) (*User, error)
	Playlists(ctx context.Context) ([]Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
	AudioFeatures(ctx context.Context, trackIDs []string) (map[string]*AudioFeatures, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	TopTracks(ctx context.Context, limit int) ([]Track, error)
}
