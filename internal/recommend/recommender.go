package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"cratedig/internal/analysis"
	"cratedig/internal/logging"
	"cratedig/internal/musicapi"
)

// ErrNoFeatures indicates the seed playlist carries no audio analysis data,
// so there is no profile to match candidates against.
var ErrNoFeatures = errors.New("recommend: playlist has no audio features to match against")

const (
	defaultLimit         = 10
	defaultMaxCandidates = 500

	// seedArtists bounds how many of the playlist's top artists seed the
	// candidate search.
	seedArtists = 3
	// searchPageSize is the per-query track fetch size for candidate
	// discovery.
	searchPageSize = 50
)

// Options tunes recommendation generation.
type Options struct {
	// Limit caps the number of returned recommendations. Values below 1
	// fall back to 10.
	Limit int
	// MaxCandidates caps the candidate pool assembled before scoring.
	// Values below 1 fall back to 500.
	MaxCandidates int
}

// Recommendation pairs a candidate track with its similarity to the seed
// playlist profile.
type Recommendation struct {
	Track musicapi.Track `json:"track"`
	Score float64        `json:"score"`
}

// Recommender suggests tracks similar in audio profile to a seed playlist.
type Recommender struct {
	svc    musicapi.Service
	logger *slog.Logger
}

func New(svc musicapi.Service, logger *slog.Logger) *Recommender {
	return &Recommender{
		svc:    svc,
		logger: logging.NewComponentLogger(logger, "recommend"),
	}
}

// ForPlaylist recommends tracks that match the audio profile of the given
// playlist tracks. Candidates come from searches seeded by the playlist's top
// artists plus the user's top tracks; tracks already on the playlist are
// excluded, and the rest are ranked by cosine similarity of their normalized
// feature vectors against the playlist centroid.
func (r *Recommender) ForPlaylist(ctx context.Context, seed []musicapi.Track, opts Options) ([]Recommendation, error) {
	limit := opts.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	maxCandidates := opts.MaxCandidates
	if maxCandidates < 1 {
		maxCandidates = defaultMaxCandidates
	}

	centroid := analysis.Centroid(seed)
	if centroid == nil {
		return nil, ErrNoFeatures
	}

	candidates, err := r.gatherCandidates(ctx, seed, maxCandidates)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := r.fillFeatures(ctx, candidates); err != nil {
		return nil, err
	}

	ranked := make([]Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		vec := analysis.Vector(candidate.Features)
		if vec == nil {
			continue
		}
		ranked = append(ranked, Recommendation{
			Track: *candidate,
			Score: cosineSimilarity(vec, centroid),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Track.Popularity != ranked[j].Track.Popularity {
			return ranked[i].Track.Popularity > ranked[j].Track.Popularity
		}
		return ranked[i].Track.ID < ranked[j].Track.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	r.logger.Info("recommendations ranked",
		logging.Int("candidates", len(candidates)),
		logging.Int("returned", len(ranked)))
	return ranked, nil
}

// gatherCandidates assembles the deduplicated candidate pool. Seed playlist
// tracks never appear in the pool.
func (r *Recommender) gatherCandidates(ctx context.Context, seed []musicapi.Track, maxCandidates int) ([]*musicapi.Track, error) {
	exclude := make(map[string]struct{}, len(seed))
	artistCounts := map[string]int{}
	for _, track := range seed {
		exclude[track.ID] = struct{}{}
		if primary := track.PrimaryArtist(); primary.Name != "" {
			artistCounts[primary.Name]++
		}
	}

	pool := make([]*musicapi.Track, 0, maxCandidates)
	seen := map[string]struct{}{}
	add := func(tracks []musicapi.Track) {
		for i := range tracks {
			track := tracks[i]
			if track.ID == "" {
				continue
			}
			if _, ok := exclude[track.ID]; ok {
				continue
			}
			if _, ok := seen[track.ID]; ok {
				continue
			}
			if len(pool) >= maxCandidates {
				return
			}
			seen[track.ID] = struct{}{}
			pool = append(pool, &track)
		}
	}

	for _, artist := range rankArtists(artistCounts, seedArtists) {
		found, err := r.svc.SearchTracks(ctx, fmt.Sprintf("artist:%q", artist), searchPageSize)
		if err != nil {
			return nil, fmt.Errorf("search candidates for %s: %w", artist, err)
		}
		add(found)
		if len(pool) >= maxCandidates {
			break
		}
	}

	if len(pool) < maxCandidates {
		top, err := r.svc.TopTracks(ctx, searchPageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch top tracks: %w", err)
		}
		add(top)
	}

	r.logger.Debug("candidate pool assembled", logging.Int("candidates", len(pool)))
	return pool, nil
}

// fillFeatures fetches audio features for candidates that arrived without
// analysis data. Candidates the API has no data for stay featureless and are
// dropped at scoring time.
func (r *Recommender) fillFeatures(ctx context.Context, candidates []*musicapi.Track) error {
	missing := make([]string, 0, len(candidates))
	byID := make(map[string]*musicapi.Track, len(candidates))
	for _, candidate := range candidates {
		if candidate.Features != nil {
			continue
		}
		missing = append(missing, candidate.ID)
		byID[candidate.ID] = candidate
	}
	if len(missing) == 0 {
		return nil
	}

	features, err := r.svc.AudioFeatures(ctx, missing)
	if err != nil {
		return fmt.Errorf("fetch candidate features: %w", err)
	}
	for id, f := range features {
		if candidate, ok := byID[id]; ok {
			candidate.Features = f
		}
	}
	return nil
}

// rankArtists orders artists by seed track count, then name, and keeps the
// top few as search seeds.
func rankArtists(counts map[string]int, limit int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}
