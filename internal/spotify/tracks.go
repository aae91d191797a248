package spotify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
)

const maxItemsPerPage = 100

// FetchPlaylistTracks retrieves the tracks of a playlist in playlist order.
// Podcast episodes and unavailable items are skipped.
func (c *Client) FetchPlaylistTracks(ctx context.Context, playlistID string) ([]catalog.PlaylistTrack, error) {
	var tracks []catalog.PlaylistTrack

	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(maxItemsPerPage))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s items: %w", playlistID, err)
	}

	for {
		for _, item := range page.Items {
			if pt, ok := convertItem(item, playlistID); ok {
				tracks = append(tracks, pt)
			}
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page of playlist %s: %w", playlistID, err)
		}
	}

	return tracks, nil
}

// convertItem converts a playlist item to catalog.PlaylistTrack.
// It reports false for items that are not tracks.
func convertItem(item spotify.PlaylistItem, playlistID string) (catalog.PlaylistTrack, bool) {
	if item.Track.Track == nil {
		return catalog.PlaylistTrack{}, false
	}

	// Parse AddedAt timestamp, use zero value on failure
	addedAt, _ := time.Parse(time.RFC3339, item.AddedAt)

	return catalog.PlaylistTrack{
		Track:      convertTrack(item.Track.Track),
		PlaylistID: playlistID,
		AddedAt:    addedAt,
	}, true
}

// convertTrack converts a Spotify FullTrack to catalog.Track.
func convertTrack(t *spotify.FullTrack) catalog.Track {
	artists := make([]catalog.Artist, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = catalog.Artist{ID: a.ID.String(), Name: a.Name}
	}

	return catalog.Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		URI:        string(t.URI),
		Album:      t.Album.Name,
		DurationMs: int(t.Duration),
		Artists:    artists,
	}
}
