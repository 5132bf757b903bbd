package analysis

import (
	"math"
	"sort"

	"cratedig/internal/musicapi"
)

// ArtistCount pairs an artist with the number of playlist tracks crediting
// them as primary artist.
type ArtistCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Profile is the musical fingerprint of a playlist.
type Profile struct {
	Name           string             `json:"name"`
	TrackCount     int                `json:"trackCount"`
	UniqueArtists  int                `json:"uniqueArtists"`
	AvgDurationMin float64            `json:"avgDurationMinutes"`
	AvgPopularity  float64            `json:"avgPopularity"`
	FeatureMeans   map[string]float64 `json:"featureMeans"`
	FeatureStdDevs map[string]float64 `json:"featureStdDevs"`
	TopArtists     []ArtistCount      `json:"topArtists"`
	Mood           Mood               `json:"mood"`
}

// Options tunes profile computation.
type Options struct {
	// TopArtists caps the reported artist list. Values below 1 fall back
	// to 5.
	TopArtists int
}

// Analyze computes the profile of a playlist from its tracks. Tracks without
// audio features contribute to counts and duration but are excluded from
// feature statistics. An empty playlist yields a zeroed profile with the
// balanced mood.
func Analyze(name string, tracks []musicapi.Track, opts Options) Profile {
	topN := opts.TopArtists
	if topN < 1 {
		topN = 5
	}

	profile := Profile{
		Name:           name,
		TrackCount:     len(tracks),
		FeatureMeans:   map[string]float64{},
		FeatureStdDevs: map[string]float64{},
	}

	artists := map[string]int{}
	var durationSum, popularitySum float64
	for _, track := range tracks {
		durationSum += float64(track.DurationMS)
		popularitySum += float64(track.Popularity)
		if primary := track.PrimaryArtist(); primary.Name != "" {
			artists[primary.Name]++
		}
	}
	profile.UniqueArtists = len(artists)
	if len(tracks) > 0 {
		profile.AvgDurationMin = durationSum / float64(len(tracks)) / 60000.0
		profile.AvgPopularity = popularitySum / float64(len(tracks))
	}

	for _, name := range FeatureNames {
		values := featureColumn(tracks, name)
		if len(values) == 0 {
			continue
		}
		mean := meanOf(values)
		profile.FeatureMeans[name] = mean
		profile.FeatureStdDevs[name] = stdDevOf(values, mean)
	}

	profile.TopArtists = topArtists(artists, topN)
	profile.Mood = classifyMood(profile.FeatureMeans)
	return profile
}

// featureColumn collects the raw values of one feature across tracks that
// have analysis data.
func featureColumn(tracks []musicapi.Track, feature string) []float64 {
	values := make([]float64, 0, len(tracks))
	for _, track := range tracks {
		if track.Features == nil {
			continue
		}
		values = append(values, FeatureValue(track.Features, feature))
	}
	return values
}

func topArtists(counts map[string]int, limit int) []ArtistCount {
	ranked := make([]ArtistCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, ArtistCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDevOf is the sample standard deviation; a single observation has no
// spread.
func stdDevOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
