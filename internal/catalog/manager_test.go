package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubFetcher returns queued results in order, then repeats the last one.
type stubFetcher struct {
	mu      sync.Mutex
	results []stubResult
	calls   int
}

type stubResult struct {
	m   *Map
	err error
}

func (f *stubFetcher) FetchCatalog(_ context.Context) (*Map, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := min(f.calls, len(f.results)-1)
	f.calls++
	return f.results[i].m, f.results[i].err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// TestManager_RefreshPublishes verifies a refresh reaches subscribers and reports counts.
func TestManager_RefreshPublishes(t *testing.T) {
	t.Parallel()

	m := NewMap(testEntries()...)
	mgr := NewManager(&stubFetcher{results: []stubResult{{m: m}}})

	sub := mgr.Subscribe()
	defer sub.Unsubscribe()

	result, err := mgr.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Playlists)
	require.Equal(t, 3, result.Tracks)

	require.Same(t, m, receive(t, sub).Map)
	require.Same(t, m, mgr.Latest())
}

// TestManager_RefreshCooldown rejects refreshes inside the cooldown window.
func TestManager_RefreshCooldown(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{results: []stubResult{{m: NewMap()}}}
	mgr := NewManager(fetcher, WithRefreshCooldown(time.Minute))
	mgr.now = func() time.Time { return now }

	ok, _ := mgr.CanRefresh()
	require.True(t, ok)

	_, err := mgr.Refresh(context.Background())
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	ok, next := mgr.CanRefresh()
	require.False(t, ok)
	require.Equal(t, now.Add(30*time.Second), next)

	_, err = mgr.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshTooRecent)
	require.Equal(t, 1, fetcher.callCount())

	now = now.Add(31 * time.Second)
	_, err = mgr.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.callCount())
}

// TestManager_FailedRefreshDoesNotStartCooldown publishes the error and allows a retry.
func TestManager_FailedRefreshDoesNotStartCooldown(t *testing.T) {
	t.Parallel()

	boom := errors.New("spotify unavailable")
	fetcher := &stubFetcher{results: []stubResult{{err: boom}, {m: NewMap()}}}
	mgr := NewManager(fetcher)

	sub := mgr.Subscribe()
	defer sub.Unsubscribe()

	_, err := mgr.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, receive(t, sub).Err, boom)
	require.Nil(t, mgr.Latest())

	_, err = mgr.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, receive(t, sub).Map)
}

// TestManager_RunCompletesOnCancel verifies Run fetches at start and completes the feed on exit.
func TestManager_RunCompletesOnCancel(t *testing.T) {
	t.Parallel()

	m := NewMap(testEntries()...)
	mgr := NewManager(&stubFetcher{results: []stubResult{{m: m}}}, WithRefreshInterval(time.Hour))

	sub := mgr.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	require.Same(t, m, receive(t, sub).Map)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return")
	}
	requireClosed(t, sub)
}
