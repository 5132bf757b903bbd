package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cratedig/internal/musicapi"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize cratedig with your Spotify account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			auth, err := musicapi.NewAuthenticator(cfg, ctx.logger())
			if err != nil {
				return err
			}
			user, err := auth.Login(cmd.Context())
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			name := user.DisplayName
			if name == "" {
				name = user.ID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `cratedig sync` to pull your playlists into the library.")
			return nil
		},
	}
}
