package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"cratedig/internal/dashboard"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show library and daemon status",
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

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			daemonStatus, daemonErr := fetchDaemonStatus(cfg.Dashboard.Bind)

			if jsonOut {
				payload := map[string]any{"library": stats}
				if daemonErr == nil {
					payload["daemon"] = daemonStatus
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Library", colorize))
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, store.Path(), colorize))
			fmt.Fprintln(out, renderStatusLine("Playlists", statusInfo, fmt.Sprintf("%d", stats.Playlists), colorize))
			trackKind := statusOK
			if stats.Tracks == 0 {
				trackKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Tracks", trackKind,
				fmt.Sprintf("%d (%d with features)", stats.Tracks, stats.TracksWithFeatures), colorize))
			if stats.LastSyncedAt != nil {
				fmt.Fprintln(out, renderStatusLine("Last synced", statusOK,
					stats.LastSyncedAt.Local().Format("2006-01-02 15:04"), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Last synced", statusWarn, "never; run `cratedig sync`", colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
			if daemonErr != nil {
				fmt.Fprintln(out, renderStatusLine("Dashboard", statusWarn,
					fmt.Sprintf("not reachable at %s", cfg.Dashboard.Bind), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Dashboard", statusOK,
					fmt.Sprintf("listening at %s", cfg.Dashboard.Bind), colorize))
				if daemonStatus.Syncing {
					fmt.Fprintln(out, renderStatusLine("Sync", statusInfo, "running", colorize))
				} else if daemonStatus.LastSync != nil {
					fmt.Fprintln(out, renderStatusLine("Sync", statusOK,
						fmt.Sprintf("last run synced %d playlists", daemonStatus.LastSync.Synced), colorize))
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Credentials", colorize))
			if cfg.HasCredentials() {
				fmt.Fprintln(out, renderStatusLine("Spotify", statusOK, "client credentials configured", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Spotify", statusError,
					"missing; set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET", colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of formatted status")
	return cmd
}

// fetchDaemonStatus asks a running cratedigd for its sync state.
func fetchDaemonStatus(bind string) (*dashboard.StatusResponse, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/status", bind))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon status: HTTP %d", resp.StatusCode)
	}

	var status dashboard.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode daemon status: %w", err)
	}
	return &status, nil
}
