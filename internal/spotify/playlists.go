package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
)

const maxPlaylistsPerPage = 50

// FetchPlaylists retrieves every playlist the current user owns or follows.
func (c *Client) FetchPlaylists(ctx context.Context) ([]catalog.Playlist, error) {
	var playlists []catalog.Playlist

	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(maxPlaylistsPerPage))
	if err != nil {
		return nil, fmt.Errorf("fetching playlists: %w", err)
	}

	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, convertPlaylist(p))
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next playlist page: %w", err)
		}
	}

	c.logger.Debug("fetched playlists", zap.Int("count", len(playlists)))
	return playlists, nil
}

// convertPlaylist converts a Spotify SimplePlaylist to catalog.Playlist.
func convertPlaylist(p spotify.SimplePlaylist) catalog.Playlist {
	return catalog.Playlist{
		ID:   p.ID.String(),
		Name: p.Name,
		URI:  string(p.URI),
	}
}
