package spotify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
)

// FetchCatalog loads every playlist with its tracks. Playlist tracks are
// fetched concurrently; the snapshot keeps the order Spotify lists the
// playlists in. A playlist whose tracks cannot be fetched is left out,
// unless every playlist fails, in which case the errors are returned.
func (c *Client) FetchCatalog(ctx context.Context) (*catalog.Map, error) {
	playlists, err := c.FetchPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return catalog.NewMap(), nil
	}

	entries := make([]catalog.Entry, len(playlists))
	errs := make([]error, len(playlists))

	workCh := make(chan int, len(playlists))
	for i := range playlists {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for range min(c.concurrency, len(playlists)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}

				tracks, err := c.FetchPlaylistTracks(ctx, playlists[i].ID)
				if err != nil {
					errs[i] = err
					continue
				}
				entries[i] = catalog.Entry{Playlist: playlists[i], Tracks: tracks}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}

	kept := entries[:0]
	var failures []error
	for i, e := range entries {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			c.logger.Warn("skipping playlist",
				zap.String("playlist", playlists[i].Name),
				zap.Error(errs[i]),
			)
			continue
		}
		kept = append(kept, e)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("fetching playlist tracks: %w", errors.Join(failures...))
	}

	snapshot := catalog.NewMap(kept...)
	c.logger.Debug("fetched catalog",
		zap.Int("playlists", snapshot.Len()),
		zap.Int("tracks", snapshot.TrackCount()),
	)
	return snapshot, nil
}

var _ catalog.Fetcher = (*Client)(nil)
