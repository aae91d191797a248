package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-alarm/internal/storage"
)

const (
	configDirName = "spotify-alarm"
	tokenFileName = "token.json"

	// TokenKey is the storage key the OAuth token is kept under.
	TokenKey = "spotify_token"
)

// TokenCache keeps the OAuth token in a key-value store.
type TokenCache struct {
	store storage.Store
}

// DefaultTokenPath returns the default token file location:
// ~/.config/spotify-alarm/token.json
func DefaultTokenPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(configDir, configDirName, tokenFileName), nil
}

// NewTokenCache creates a TokenCache on top of store.
func NewTokenCache(store storage.Store) *TokenCache {
	return &TokenCache{store: store}
}

// NewFileTokenCache creates a TokenCache stored in a private file at path.
func NewFileTokenCache(path string) *TokenCache {
	return NewTokenCache(storage.NewFile(path))
}

// Load reads the cached token.
// Returns (nil, nil) if no token is cached.
func (c *TokenCache) Load(ctx context.Context) (*oauth2.Token, error) {
	data, err := c.store.Get(ctx, TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return &token, nil
}

// Save stores the token.
func (c *TokenCache) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := c.store.Set(ctx, TokenKey, data); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Delete removes the cached token. Deleting a missing token is not an error.
func (c *TokenCache) Delete(ctx context.Context) error {
	if err := c.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
