package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"cratedig/internal/analysis"
	"cratedig/internal/musicapi"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <playlist>",
		Short: "Export a playlist's tracks and audio features as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				out = file
			}

			if err := writeTracksCSV(out, tracks); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tracks from %q to %s\n", len(tracks), pl.Name, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (defaults to stdout)")
	return cmd
}

func writeTracksCSV(out io.Writer, tracks []musicapi.Track) error {
	w := csv.NewWriter(out)

	header := []string{"id", "name", "artists", "album", "duration_ms", "popularity", "added_at"}
	header = append(header, analysis.FeatureNames...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, track := range tracks {
		addedAt := ""
		if !track.AddedAt.IsZero() {
			addedAt = track.AddedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		row := []string{
			track.ID,
			track.Name,
			track.ArtistNames(),
			track.Album,
			strconv.Itoa(track.DurationMS),
			strconv.Itoa(track.Popularity),
			addedAt,
		}
		for _, feature := range analysis.FeatureNames {
			if track.Features == nil {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(analysis.FeatureValue(track.Features, feature), 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
