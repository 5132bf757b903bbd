package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cratedig/internal/report"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the Spotify catalog for tracks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newService(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			tracks, err := svc.SearchTracks(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, tracks)
			}
			if len(tracks) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No tracks found for %q.\n", query)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.TracksTable(tracks))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
