package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cratedig/internal/analysis"
	"cratedig/internal/report"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var withFeatures bool

	cmd := &cobra.Command{
		Use:   "analyze <playlist>",
		Short: "Profile a playlist's audio features, artists, and mood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			pl, err := store.FindPlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tracks, err := store.Tracks(cmd.Context(), pl.ID)
			if err != nil {
				return err
			}

			profile := analysis.Analyze(pl.Name, tracks, analysis.Options{
				TopArtists: cfg.Analysis.TopArtists,
			})

			if jsonOut {
				payload := struct {
					Profile analysis.Profile     `json:"profile"`
					Radar   analysis.Radar       `json:"radar"`
					Charts  []analysis.Histogram `json:"histograms,omitempty"`
				}{Profile: profile, Radar: analysis.RadarPayload(tracks)}
				if withFeatures {
					payload.Charts = analysis.Histograms(tracks, cfg.Analysis.HistogramBins)
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.ProfileSummary(profile))
			if profile.Mood.Description != "" {
				fmt.Fprintf(out, "\n%s\n", profile.Mood.Description)
			}
			if len(profile.FeatureMeans) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, report.ProfileFeaturesTable(profile))
			}
			if len(profile.TopArtists) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, report.TopArtistsTable(profile.TopArtists))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of tables")
	cmd.Flags().BoolVar(&withFeatures, "histograms", false, "Include per-feature histograms in JSON output")
	return cmd
}
