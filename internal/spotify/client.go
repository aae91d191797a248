// Package spotify provides a wrapper around the Spotify Web API that
// loads the user's playlists into a catalog snapshot.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// DefaultConcurrency is the number of playlists whose tracks are fetched in parallel.
const DefaultConcurrency = 4

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api         *spotify.Client
	concurrency int
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithConcurrency sets the number of concurrent playlist fetches.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{
		api:         api,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}
