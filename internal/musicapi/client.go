package musicapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"

	"cratedig/internal/config"
	"cratedig/internal/logging"
)

const (
	// pageSize is the page length used for playlist and track pagination.
	pageSize = 50
	// featureBatchSize is the Spotify cap on ids per audio-features request.
	featureBatchSize = 100
)

// Client implements Service against the Spotify Web API using the cached
// OAuth token.
type Client struct {
	api    *spotify.Client
	logger *slog.Logger
}

var _ Service = (*Client)(nil)

// NewClient restores the cached token and builds an API client. It fails with
// ErrNotAuthenticated when no token cache exists and ErrMissingCredentials
// when the application credentials are absent.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if !cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	tok, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	return &Client{
		api:    spotify.New(httpClientForToken(ctx, cfg, tok)),
		logger: logging.NewComponentLogger(logger, "spotify"),
	}, nil
}

// CurrentUser resolves the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// Playlists returns every playlist of the current user, following pagination.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	for offset := 0; ; offset += pageSize {
		page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(pageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("fetch playlists: %w", err)
		}
		for _, pl := range page.Playlists {
			playlists = append(playlists, fromSimplePlaylist(pl))
		}
		if len(page.Playlists) < pageSize {
			break
		}
	}
	c.logger.Debug("playlists fetched", logging.Int("count", len(playlists)))
	return playlists, nil
}

// PlaylistTracks returns all tracks of a playlist in playlist order. Episodes
// and local files without a track id are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	var tracks []Track
	for offset := 0; ; offset += pageSize {
		page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("fetch playlist items: %w", err)
		}
		for _, item := range page.Items {
			full := item.Track.Track
			if full == nil || full.ID == "" {
				continue
			}
			track := fromFullTrack(*full)
			if ts, err := time.Parse(spotify.TimestampLayout, item.AddedAt); err == nil {
				track.AddedAt = ts
			}
			tracks = append(tracks, track)
		}
		if len(page.Items) < pageSize {
			break
		}
	}
	c.logger.Debug("playlist tracks fetched",
		logging.String(logging.FieldPlaylistID, playlistID),
		logging.Int("count", len(tracks)))
	return tracks, nil
}

// AudioFeatures fetches audio features for the given track ids, batching
// requests at the API limit. Tracks without analysis are absent from the
// result map.
func (c *Client) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]*AudioFeatures, error) {
	features := make(map[string]*AudioFeatures, len(trackIDs))
	for start := 0; start < len(trackIDs); start += featureBatchSize {
		end := min(start+featureBatchSize, len(trackIDs))
		batch := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			if id != "" {
				batch = append(batch, spotify.ID(id))
			}
		}
		if len(batch) == 0 {
			continue
		}
		result, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return nil, fmt.Errorf("fetch audio features: %w", err)
		}
		for _, f := range result {
			if f == nil {
				continue
			}
			features[string(f.ID)] = fromAudioFeatures(f)
		}
	}
	return features, nil
}

// SearchTracks performs a free-text track search. The limit is clamped to the
// API maximum of 50.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit < 1 || limit > pageSize {
		limit = pageSize
	}
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}
	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, fromFullTrack(ft))
	}
	return tracks, nil
}

// TopTracks returns the user's top tracks over the medium term.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]Track, error) {
	if limit < 1 || limit > pageSize {
		limit = pageSize
	}
	page, err := c.api.CurrentUsersTopTracks(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("fetch top tracks: %w", err)
	}
	tracks := make([]Track, 0, len(page.Tracks))
	for _, ft := range page.Tracks {
		tracks = append(tracks, fromFullTrack(ft))
	}
	return tracks, nil
}

func fromSimplePlaylist(pl spotify.SimplePlaylist) Playlist {
	return Playlist{
		ID:            string(pl.ID),
		Name:          pl.Name,
		Owner:         pl.Owner.DisplayName,
		SnapshotID:    pl.SnapshotID,
		Collaborative: pl.Collaborative,
		Public:        pl.IsPublic,
		TrackTotal:    int(pl.Tracks.Total),
	}
}

func fromFullTrack(ft spotify.FullTrack) Track {
	artists := make([]Artist, 0, len(ft.Artists))
	for _, a := range ft.Artists {
		artists = append(artists, Artist{ID: string(a.ID), Name: a.Name})
	}
	return Track{
		ID:          string(ft.ID),
		Name:        ft.Name,
		Artists:     artists,
		Album:       ft.Album.Name,
		AlbumID:     string(ft.Album.ID),
		DurationMS:  int(ft.Duration),
		Popularity:  int(ft.Popularity),
		TrackNumber: int(ft.TrackNumber),
		Explicit:    ft.Explicit,
	}
}

func fromAudioFeatures(f *spotify.AudioFeatures) *AudioFeatures {
	return &AudioFeatures{
		Danceability:     float64(f.Danceability),
		Energy:           float64(f.Energy),
		Valence:          float64(f.Valence),
		Acousticness:     float64(f.Acousticness),
		Instrumentalness: float64(f.Instrumentalness),
		Liveness:         float64(f.Liveness),
		Speechiness:      float64(f.Speechiness),
		Tempo:            float64(f.Tempo),
		Loudness:         float64(f.Loudness),
	}
}
