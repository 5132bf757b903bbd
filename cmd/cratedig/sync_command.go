package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cratedig/internal/extract"
	"cratedig/internal/report"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sync [playlist]",
		Short: "Pull playlists and audio features into the local library",
		Args:  cobra.MaximumNArgs(1),
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

			svc, err := ctx.newService(cmd.Context())
			if err != nil {
				return err
			}
			extractor := extract.New(svc, store, ctx.logger())

			opts := extract.Options{Force: force, Concurrency: cfg.Sync.Concurrency}
			var rep *extract.Report
			if len(args) == 1 {
				rep, err = extractor.SyncPlaylist(cmd.Context(), args[0], opts)
			} else {
				rep, err = extractor.SyncAll(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, rep)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.SyncSummary(rep))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Resync playlists even when their snapshot is unchanged")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
