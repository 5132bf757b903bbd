package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cratedig/internal/recommend"
	"cratedig/internal/report"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "recommend <playlist>",
		Short: "Suggest tracks that match a playlist's audio profile",
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

			svc, err := ctx.newService(cmd.Context())
			if err != nil {
				return err
			}

			if limit < 1 {
				limit = cfg.Recommend.Limit
			}
			recs, err := recommend.New(svc, ctx.logger()).ForPlaylist(cmd.Context(), tracks, recommend.Options{
				Limit:         limit,
				MaxCandidates: cfg.Recommend.MaxCandidates,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recommendations found.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tracks similar to %q:\n\n", pl.Name)
			fmt.Fprintln(cmd.OutOrStdout(), report.RecommendationsTable(recs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of recommendations (defaults to the configured limit)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
