package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cratedig/internal/report"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	var remote bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "List playlists in the local library",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				return listRemotePlaylists(ctx, cmd, jsonOut)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			playlists, err := store.Playlists(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, playlists)
			}
			if len(playlists) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Library is empty; run `cratedig sync` first.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.PlaylistsTable(playlists))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "List playlists from the Spotify API instead of the local library")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func listRemotePlaylists(ctx *commandContext, cmd *cobra.Command, jsonOut bool) error {
	svc, err := ctx.newService(cmd.Context())
	if err != nil {
		return err
	}
	playlists, err := svc.Playlists(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd, playlists)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.RemotePlaylistsTable(playlists))
	return nil
}
