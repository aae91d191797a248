package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-alarm/internal/storage"
)

// TestKVRepository runs against a real PostgreSQL when SPOTIFY_ALARM_TEST_DATABASE_URL is set.
func TestKVRepository(t *testing.T) {
	url := os.Getenv("SPOTIFY_ALARM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SPOTIFY_ALARM_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := New(ctx, url)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.EnsureSchema(ctx))

	kv := database.KV()
	key := "test-" + uuid.NewString()

	_, err = kv.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, kv.Set(ctx, key, []byte("one")))
	require.NoError(t, kv.Set(ctx, key, []byte("two")))

	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("two"), got)

	require.NoError(t, kv.Delete(ctx, key))
	_, err = kv.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestNew_InvalidURL fails before any network access.
func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "://not-a-url")
	require.Error(t, err)
}
