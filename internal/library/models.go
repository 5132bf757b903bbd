package library

import (
	"time"

	"cratedig/internal/musicapi"
)

// Playlist is a cached playlist row plus sync bookkeeping.
type Playlist struct {
	musicapi.Playlist
	LastSyncedAt time.Time `json:"lastSyncedAt,omitzero"`
	TrackCount   int       `json:"trackCount"`
}

// Stats summarizes library contents.
type Stats struct {
	Playlists          int        `json:"playlists"`
	Tracks             int        `json:"tracks"`
	TracksWithFeatures int        `json:"tracksWithFeatures"`
	LastSyncedAt       *time.Time `json:"lastSyncedAt,omitempty"`
}
