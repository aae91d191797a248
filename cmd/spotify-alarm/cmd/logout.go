package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-alarm/internal/app"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached Spotify token.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop, cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer stop()

		if err := app.Logout(ctx, cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}
