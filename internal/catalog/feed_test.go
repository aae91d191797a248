package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()

	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func requireClosed(t *testing.T, sub Subscription) {
	t.Helper()

	select {
	case _, ok := <-sub.Events():
		require.False(t, ok, "expected closed channel")
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for close")
	}
}

// TestHub_DeliversInOrder verifies that a burst of snapshots arrives unchanged and in order.
func TestHub_DeliversInOrder(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	maps := make([]*Map, 50)
	for i := range maps {
		maps[i] = NewMap(Entry{Playlist: Playlist{ID: string(rune('a' + i%26))}})
		hub.Publish(maps[i])
	}

	for i := range maps {
		ev := receive(t, sub)
		require.NoError(t, ev.Err)
		require.Same(t, maps[i], ev.Map)
	}
}

// TestHub_FailIsNotTerminal verifies errors are delivered and later snapshots still arrive.
func TestHub_FailIsNotTerminal(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	boom := errors.New("boom")
	m := NewMap()

	hub.Fail(boom)
	hub.Publish(m)

	require.ErrorIs(t, receive(t, sub).Err, boom)
	require.Same(t, m, receive(t, sub).Map)
}

// TestHub_Replay checks that replaying hubs hand the latest snapshot to late subscribers.
func TestHub_Replay(t *testing.T) {
	t.Parallel()

	first, second := NewMap(), NewMap()

	replaying := NewHub(WithReplay())
	replaying.Publish(first)
	replaying.Publish(second)

	sub := replaying.Subscribe()
	defer sub.Unsubscribe()
	require.Same(t, second, receive(t, sub).Map)
	require.Same(t, second, replaying.Latest())

	plain := NewHub()
	plain.Publish(first)
	late := plain.Subscribe()
	defer late.Unsubscribe()

	select {
	case ev := <-late.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestHub_CompleteDrainsThenCloses verifies queued events are delivered before the channel closes.
func TestHub_CompleteDrainsThenCloses(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	sub := hub.Subscribe()
	m := NewMap()

	hub.Publish(m)
	hub.Complete()
	hub.Publish(NewMap())

	require.Same(t, m, receive(t, sub).Map)
	requireClosed(t, sub)

	// Subscribing after completion yields a closed subscription.
	requireClosed(t, hub.Subscribe())
}

// TestHub_Unsubscribe closes the channel and is idempotent.
func TestHub_Unsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	sub := hub.Subscribe()

	sub.Unsubscribe()
	sub.Unsubscribe()
	requireClosed(t, sub)

	// Publishing after unsubscribe must not block or panic.
	hub.Publish(NewMap())
}
