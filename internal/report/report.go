package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cratedig/internal/analysis"
	"cratedig/internal/extract"
	"cratedig/internal/library"
	"cratedig/internal/musicapi"
	"cratedig/internal/recommend"
)

var titleCaser = cases.Title(language.English)

// FeatureLabel renders an audio feature name for display, e.g.
// "instrumentalness" becomes "Instrumentalness".
func FeatureLabel(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// FormatDuration renders milliseconds as M:SS.
func FormatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// PlaylistsTable renders the stored playlist listing.
func PlaylistsTable(playlists []library.Playlist) string {
	rows := make([][]string, 0, len(playlists))
	for _, pl := range playlists {
		synced := "never"
		if !pl.LastSyncedAt.IsZero() {
			synced = pl.LastSyncedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			pl.Name,
			pl.Owner,
			fmt.Sprintf("%d", pl.TrackCount),
			synced,
			pl.ID,
		})
	}
	return renderTable([]string{"Name", "Owner", "Tracks", "Synced", "ID"}, rows, 2)
}

// RemotePlaylistsTable renders playlists straight from the music API, before
// any sync.
func RemotePlaylistsTable(playlists []musicapi.Playlist) string {
	rows := make([][]string, 0, len(playlists))
	for _, pl := range playlists {
		rows = append(rows, []string{
			pl.Name,
			pl.Owner,
			fmt.Sprintf("%d", pl.TrackTotal),
			pl.ID,
		})
	}
	return renderTable([]string{"Name", "Owner", "Tracks", "ID"}, rows, 2)
}

// ProfileSummary renders the headline profile numbers and the mood.
func ProfileSummary(profile analysis.Profile) string {
	rows := [][]string{
		{"Playlist", profile.Name},
		{"Tracks", fmt.Sprintf("%d", profile.TrackCount)},
		{"Unique artists", fmt.Sprintf("%d", profile.UniqueArtists)},
		{"Avg duration", fmt.Sprintf("%.1f min", profile.AvgDurationMin)},
		{"Avg popularity", fmt.Sprintf("%.0f", profile.AvgPopularity)},
		{"Mood", profile.Mood.Label},
	}
	return renderTable([]string{"Metric", "Value"}, rows)
}

// ProfileFeaturesTable renders per-feature mean and spread in the canonical
// feature order.
func ProfileFeaturesTable(profile analysis.Profile) string {
	rows := make([][]string, 0, len(analysis.FeatureNames))
	for _, name := range analysis.FeatureNames {
		mean, ok := profile.FeatureMeans[name]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			FeatureLabel(name),
			formatFeature(name, mean),
			formatFeature(name, profile.FeatureStdDevs[name]),
		})
	}
	return renderTable([]string{"Feature", "Mean", "Std Dev"}, rows, 1, 2)
}

// TopArtistsTable renders the playlist's most frequent artists.
func TopArtistsTable(artists []analysis.ArtistCount) string {
	rows := make([][]string, 0, len(artists))
	for _, artist := range artists {
		rows = append(rows, []string{artist.Name, fmt.Sprintf("%d", artist.Count)})
	}
	return renderTable([]string{"Artist", "Tracks"}, rows, 1)
}

// TracksTable renders tracks from search results or a playlist listing.
func TracksTable(tracks []musicapi.Track) string {
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			track.Name,
			track.ArtistNames(),
			track.Album,
			FormatDuration(track.DurationMS),
			fmt.Sprintf("%d", track.Popularity),
		})
	}
	return renderTable([]string{"Track", "Artists", "Album", "Length", "Pop"}, rows, 3, 4)
}

// RecommendationsTable renders ranked suggestions with their match scores.
func RecommendationsTable(recs []recommend.Recommendation) string {
	rows := make([][]string, 0, len(recs))
	for i, rec := range recs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			rec.Track.Name,
			rec.Track.ArtistNames(),
			rec.Track.Album,
			fmt.Sprintf("%.3f", rec.Score),
		})
	}
	return renderTable([]string{"#", "Track", "Artists", "Album", "Match"}, rows, 0, 4)
}

// SyncSummary renders the outcome of a sync run.
func SyncSummary(rep *extract.Report) string {
	rows := [][]string{
		{"Playlists", fmt.Sprintf("%d", rep.Playlists)},
		{"Synced", fmt.Sprintf("%d", rep.Synced)},
		{"Skipped", fmt.Sprintf("%d", rep.Skipped)},
		{"Tracks", fmt.Sprintf("%d", rep.Tracks)},
		{"Pruned", fmt.Sprintf("%d", rep.Pruned)},
		{"Duration", rep.Duration.Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Sync", "Value"}, rows, 1)
}

// formatFeature keeps tempo in BPM while the 0..1 features print with three
// decimals.
func formatFeature(name string, value float64) string {
	if name == "tempo" {
		return fmt.Sprintf("%.1f", value)
	}
	return fmt.Sprintf("%.3f", value)
}
