package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/app"
	"github.com/justestif/go-spotify-alarm/internal/config"
	"github.com/justestif/go-spotify-alarm/internal/logger"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd is the base command; subcommands do the work.
	rootCmd = &cobra.Command{
		Use:   "spotify-alarm",
		Short: "Schedule alarms that play tracks from your Spotify playlists.",
		Long: `spotify-alarm keeps a searchable copy of your Spotify playlists and stores
alarms that each play one track at a given time.

Set SPOTIFY_ID and SPOTIFY_SECRET to your Spotify application credentials.
Settings are read from a YAML file; a missing file means defaults.`,
		SilenceUsage: true,
	}
)

// Execute runs the spotify-alarm CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads settings and builds the logger for a subcommand. The returned
// context is cancelled on SIGINT or SIGTERM.
func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, *config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load settings: %w", err)
	}

	log := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	return logger.ToContext(ctx, log), stop, cfg, log, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	rootCmd.AddCommand(serveCmd, searchCmd, alarmsCmd, logoutCmd)
}
