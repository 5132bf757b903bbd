package analysis

import (
	"math"

	"cratedig/internal/musicapi"
)

// Histogram is a fixed-bin distribution of one feature across a playlist.
type Histogram struct {
	Feature string  `json:"feature"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Width   float64 `json:"width"`
	Counts  []int   `json:"counts"`
}

// Histograms computes per-feature distributions over the tracks that carry
// analysis data. Features with no data are omitted.
func Histograms(tracks []musicapi.Track, bins int) []Histogram {
	if bins < 2 {
		bins = 20
	}
	histograms := make([]Histogram, 0, len(FeatureNames))
	for _, name := range FeatureNames {
		values := featureColumn(tracks, name)
		if len(values) == 0 {
			continue
		}
		histograms = append(histograms, histogramOf(name, values, bins))
	}
	return histograms
}

func histogramOf(feature string, values []float64, bins int) Histogram {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	h := Histogram{Feature: feature, Min: lo, Max: hi, Counts: make([]int, bins)}
	if hi == lo {
		// All observations identical: everything lands in the first bin.
		h.Counts[0] = len(values)
		return h
	}
	h.Width = (hi - lo) / float64(bins)
	for _, v := range values {
		idx := int((v - lo) / h.Width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	return h
}

// Matrix is a symmetric feature correlation matrix. Values[i][j] is the
// Pearson correlation between Features[i] and Features[j].
type Matrix struct {
	Features []string    `json:"features"`
	Values   [][]float64 `json:"values"`
}

// CorrelationMatrix computes pairwise Pearson correlations between features
// across the playlist. Zero-variance features correlate 0 with everything
// except themselves.
func CorrelationMatrix(tracks []musicapi.Track) Matrix {
	columns := make([][]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		columns[i] = featureColumn(tracks, name)
	}

	n := len(FeatureNames)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(columns[i], columns[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	return Matrix{Features: append([]string{}, FeatureNames...), Values: values}
}

func pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	meanX := meanOf(xs)
	meanY := meanOf(ys)
	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// Radar is the payload for a radar/spider chart of a playlist's normalized
// feature means. All values are on a 0..1 scale so axes share a range.
type Radar struct {
	Features []string  `json:"features"`
	Values   []float64 `json:"values"`
}

// RadarPayload derives radar chart data from playlist tracks.
func RadarPayload(tracks []musicapi.Track) Radar {
	radar := Radar{Features: append([]string{}, FeatureNames...)}
	centroid := Centroid(tracks)
	if centroid == nil {
		radar.Values = make([]float64, len(FeatureNames))
		return radar
	}
	radar.Values = centroid
	return radar
}
