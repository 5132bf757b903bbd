package analysis

import "cratedig/internal/musicapi"

// FeatureNames is the canonical ordered audio feature set used for
// statistics, vectors, and correlation. Every feature vector in the
// repository follows this order.
var FeatureNames = []string{
	"danceability",
	"energy",
	"valence",
	"acousticness",
	"instrumentalness",
	"liveness",
	"speechiness",
	"tempo",
}

// tempo is measured in BPM; the usable musical range maps onto 0..1.
const (
	tempoFloor = 50.0
	tempoRange = 200.0
)

// loudness is measured in dB over a -60..0 range.
const (
	loudnessFloor = -60.0
	loudnessRange = 60.0
)

// FeatureValue extracts a named raw feature value.
func FeatureValue(f *musicapi.AudioFeatures, name string) float64 {
	if f == nil {
		return 0
	}
	switch name {
	case "danceability":
		return f.Danceability
	case "energy":
		return f.Energy
	case "valence":
		return f.Valence
	case "acousticness":
		return f.Acousticness
	case "instrumentalness":
		return f.Instrumentalness
	case "liveness":
		return f.Liveness
	case "speechiness":
		return f.Speechiness
	case "tempo":
		return f.Tempo
	case "loudness":
		return f.Loudness
	default:
		return 0
	}
}

// NormalizeTempo maps BPM onto 0..1, clamped at the 50-250 BPM range.
func NormalizeTempo(bpm float64) float64 {
	return clamp01((bpm - tempoFloor) / tempoRange)
}

// NormalizeLoudness maps dB onto 0..1, clamped at the -60..0 dB range.
func NormalizeLoudness(db float64) float64 {
	return clamp01((db - loudnessFloor) / loudnessRange)
}

// Vector returns the normalized feature vector in FeatureNames order, or nil
// when no features are available.
func Vector(f *musicapi.AudioFeatures) []float64 {
	if f == nil {
		return nil
	}
	vec := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		value := FeatureValue(f, name)
		if name == "tempo" {
			value = NormalizeTempo(value)
		}
		vec[i] = value
	}
	return vec
}

// Centroid averages the normalized feature vectors of the given tracks.
// Tracks without features are skipped; nil is returned when none have any.
func Centroid(tracks []musicapi.Track) []float64 {
	sum := make([]float64, len(FeatureNames))
	count := 0
	for _, track := range tracks {
		vec := Vector(track.Features)
		if vec == nil {
			continue
		}
		for i, v := range vec {
			sum[i] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
