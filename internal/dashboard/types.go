package dashboard

import (
	"cratedig/internal/analysis"
	"cratedig/internal/extract"
	"cratedig/internal/library"
	"cratedig/internal/musicapi"
	"cratedig/internal/recommend"
)

// StatusResponse reports library totals and sync state.
type StatusResponse struct {
	Library  *library.Stats  `json:"library"`
	Syncing  bool            `json:"syncing"`
	LastSync *extract.Report `json:"lastSync,omitempty"`
}

// PlaylistListResponse wraps the stored playlist listing.
type PlaylistListResponse struct {
	Playlists []library.Playlist `json:"playlists"`
}

// PlaylistDetailResponse is one playlist with its tracks.
type PlaylistDetailResponse struct {
	Playlist library.Playlist `json:"playlist"`
	Tracks   []musicapi.Track `json:"tracks"`
}

// FeaturesResponse carries the visualization payloads for one playlist.
type FeaturesResponse struct {
	Histograms  []analysis.Histogram `json:"histograms"`
	Correlation analysis.Matrix      `json:"correlation"`
	Radar       analysis.Radar       `json:"radar"`
}

// RecommendationsResponse lists ranked track suggestions.
type RecommendationsResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// SyncAccepted acknowledges a background sync kickoff.
type SyncAccepted struct {
	Status string `json:"status"`
}
