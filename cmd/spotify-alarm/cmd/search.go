package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-alarm/internal/app"
	"github.com/justestif/go-spotify-alarm/internal/collection"
)

// filterName selects which field the search matches.
var filterName string

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search your playlists by track, playlist or artist name.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := collection.ParseFilterType(filterName)
		if err != nil {
			return err
		}

		var query string
		if len(args) > 0 {
			query = args[0]
		}

		ctx, stop, cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer stop()

		matches, snapshot, err := app.Search(ctx, cfg, log, cmd.ErrOrStderr(), mode, query)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PLAYLIST\tPLAYLIST ID\tTRACK\tTRACK ID\tARTISTS")
		for _, m := range matches {
			entry, _ := snapshot.Playlist(m.PlaylistID)
			artists := make([]string, len(m.Track.Artists))
			for i, a := range m.Track.Artists {
				artists[i] = a.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.Playlist.Name, m.PlaylistID, m.Track.Name, m.Track.ID, strings.Join(artists, ", "))
		}
		return w.Flush()
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	searchCmd.Flags().StringVarP(&filterName, "filter", "f", collection.FilterTracks.String(), "match on tracks, playlists or artists")
}
