package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-alarm/internal/app"
)

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "Inspect and remove stored alarms.",
}

var alarmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored alarms.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop, cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer stop()

		alarms, err := app.ListAlarms(ctx, cfg, log)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTRACK\tARTISTS\tPLAYLIST")
		for _, a := range alarms {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				a.Date.Format(time.RFC3339), a.TrackName, strings.Join(a.Artists, ", "), a.PlaylistName)
		}
		return w.Flush()
	},
}

var alarmsRemoveCmd = &cobra.Command{
	Use:   "remove <date>",
	Short: "Remove the alarm scheduled at an RFC 3339 date.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := time.Parse(time.RFC3339, args[0])
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}

		ctx, stop, cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer stop()

		if err := app.RemoveAlarm(ctx, cfg, log, date); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed alarm at %s\n", date.Format(time.RFC3339))
		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	alarmsCmd.AddCommand(alarmsListCmd, alarmsRemoveCmd)
}
