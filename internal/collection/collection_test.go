package collection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-alarm/internal/alarm"
	"github.com/justestif/go-spotify-alarm/internal/catalog"
	"github.com/justestif/go-spotify-alarm/internal/storage"
)

// newTestCollection returns a collection whose feed already delivered m.
func newTestCollection(t *testing.T, m *catalog.Map) (*Collection, *catalog.Hub, storage.Store) {
	t.Helper()

	upstream := catalog.NewHub(catalog.WithReplay())
	store := storage.NewMemory()
	c := New(upstream, store)
	t.Cleanup(func() { _ = c.Close() })

	if m != nil {
		upstream.Publish(m)
		require.Eventually(t, func() bool { return c.Snapshot() == m }, waitTimeout, 5*time.Millisecond)
	}
	return c, upstream, store
}

// TestCollection_FilterBeforeSnapshot is empty in every mode.
func TestCollection_FilterBeforeSnapshot(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCollection(t, nil)
	for _, mode := range []FilterType{FilterTracks, FilterPlaylists, FilterArtists} {
		require.Empty(t, c.FilterTracksBy(mode, ""))
	}
	require.Empty(t, c.Playlists())
	require.NotNil(t, c.Playlists())
}

// TestCollection_FilterFollowsLatestSnapshot searches whatever the feed delivered last.
func TestCollection_FilterFollowsLatestSnapshot(t *testing.T) {
	t.Parallel()

	c, upstream, _ := newTestCollection(t, exampleCatalog())
	require.Equal(t, []string{"Weightless"}, names(c.FilterTracksBy(FilterPlaylists, "Chill")))

	next := richCatalog()
	upstream.Publish(next)
	require.Eventually(t, func() bool { return c.Snapshot() == next }, waitTimeout, 5*time.Millisecond)

	require.Empty(t, c.FilterTracksBy(FilterPlaylists, "workout"))
	require.Equal(t, []string{"Sunset Lover", "Here Comes the Sun"}, names(c.FilterTracksBy(FilterPlaylists, "evening")))
}

// TestCollection_Updates delivers snapshots to local observers.
func TestCollection_Updates(t *testing.T) {
	t.Parallel()

	c, upstream, _ := newTestCollection(t, nil)
	updates := c.Updates()
	defer updates.Unsubscribe()

	m := exampleCatalog()
	upstream.Publish(m)
	require.Same(t, m, receiveMap(t, updates))
}

// TestCollection_FindTrack resolves tracks by playlist and track ID.
func TestCollection_FindTrack(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCollection(t, richCatalog())

	playlist, pt, ok := c.FindTrack("evening", "m1")
	require.True(t, ok)
	require.Equal(t, "Evening Chill", playlist.Name)
	require.Equal(t, "evening", pt.PlaylistID)
	require.Equal(t, "Here Comes the Sun", pt.Track.Name)

	_, _, ok = c.FindTrack("evening", "m2")
	require.False(t, ok)
	_, _, ok = c.FindTrack("missing", "m1")
	require.False(t, ok)

	require.Len(t, c.Playlists(), 3)
}

// TestCollection_AddAlarm applies replacement semantics and ignores a missing time.
func TestCollection_AddAlarm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, _, store := newTestCollection(t, exampleCatalog())

	playlist, pt, ok := c.FindTrack("workout", "tiger")
	require.True(t, ok)

	wake := time.Date(2024, 1, 15, 6, 45, 0, 0, time.UTC)
	later := wake.Add(24 * time.Hour)

	require.NoError(t, c.AddAlarm(ctx, alarm.New(wake, playlist, pt), nil))
	_, err := store.Get(ctx, alarm.StorageKey)
	require.ErrorIs(t, err, storage.ErrNotFound)

	first := alarm.New(wake, playlist, pt)
	second := alarm.New(wake, playlist, pt)
	third := alarm.New(later, playlist, pt)
	require.NoError(t, c.AddAlarm(ctx, first, &wake))
	require.NoError(t, c.AddAlarm(ctx, second, &wake))
	require.NoError(t, c.AddAlarm(ctx, third, &later))

	alarms, err := c.Alarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 2)
	require.Equal(t, second.ID, alarms[0].ID)
	require.Equal(t, third.ID, alarms[1].ID)

	removed, err := c.RemoveAlarm(ctx, wake)
	require.NoError(t, err)
	require.True(t, removed)

	alarms, err = c.Alarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
}

// TestCollection_AddAlarmConcurrent serialises concurrent writers so no alarm is lost.
func TestCollection_AddAlarmConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, _, _ := newTestCollection(t, nil)

	base := time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at := base.Add(time.Duration(i) * time.Minute)
			assert.NoError(t, c.AddAlarm(ctx, alarm.Alarm{TrackName: at.Format(time.Kitchen)}, &at))
		}()
	}
	wg.Wait()

	alarms, err := c.Alarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 20)
}
