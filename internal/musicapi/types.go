package musicapi

import (
	"strings"
	"time"
)

// User identifies the authenticated Spotify account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Artist is a track contributor.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Playlist describes a playlist as listed for the current user.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	SnapshotID    string `json:"snapshotId"`
	Collaborative bool   `json:"collaborative"`
	Public        bool   `json:"public"`
	TrackTotal    int    `json:"trackTotal"`
}

// AudioFeatures holds the per-track audio analysis values used for profiling
// and recommendation. All values except Tempo and Loudness are already on a
// 0..1 scale; Tempo is in BPM and Loudness in dB.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	Loudness         float64 `json:"loudness"`
}

// Track combines playlist entry metadata with its audio features. Features is
// nil when Spotify has no analysis for the track (local files, some
// podcasts/episodes).
type Track struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Artists     []Artist       `json:"artists"`
	Album       string         `json:"album"`
	AlbumID     string         `json:"albumId"`
	DurationMS  int            `json:"durationMs"`
	Popularity  int            `json:"popularity"`
	TrackNumber int            `json:"trackNumber"`
	Explicit    bool           `json:"explicit"`
	AddedAt     time.Time      `json:"addedAt,omitzero"`
	Features    *AudioFeatures `json:"features,omitempty"`
}

// PrimaryArtist returns the first credited artist, or a zero Artist for
// trackless edge cases.
func (t Track) PrimaryArtist() Artist {
	if len(t.Artists) == 0 {
		return Artist{}
	}
	return t.Artists[0]
}

// ArtistNames returns all credited artists joined with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
