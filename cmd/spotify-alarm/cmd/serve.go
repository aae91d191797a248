package cmd

import (
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-alarm/internal/app"
)

// listenAddr overrides the configured listen address.
var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and keep the playlist catalog fresh.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop, cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer stop()
		defer func() { _ = log.Sync() }()

		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}

		return app.Serve(ctx, cfg, log, cmd.OutOrStdout())
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address, overrides the settings file")
}
