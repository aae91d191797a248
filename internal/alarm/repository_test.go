package alarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-alarm/internal/storage"
)

var (
	t1 = time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 1, 16, 6, 30, 0, 0, time.UTC)
)

func testAlarm(track string) Alarm {
	return Alarm{
		ID:        uuid.New(),
		TrackID:   track,
		TrackName: track,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func stored(t *testing.T, store storage.Store) []Alarm {
	t.Helper()

	data, err := store.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	alarms, err := Decode(data)
	require.NoError(t, err)
	return alarms
}

// failingStore returns errors from the configured operations.
type failingStore struct {
	storage.Store
	getErr error
	setErr error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

// TestAdd_SameTimeReplaces keeps exactly one alarm per scheduled time, the latest one.
func TestAdd_SameTimeReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store)

	a1, a2 := testAlarm("first"), testAlarm("second")
	require.NoError(t, repo.Add(ctx, a1, &t1))
	require.NoError(t, repo.Add(ctx, a2, &t1))

	got := stored(t, store)
	require.Len(t, got, 1)
	require.Equal(t, a2.ID, got[0].ID)
	require.Equal(t, "second", got[0].TrackName)
	require.True(t, got[0].Date.Equal(t1))
}

// TestAdd_DifferentTimesKeepsBoth appends alarms for distinct times in insertion order.
func TestAdd_DifferentTimesKeepsBoth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store)

	a1, a2 := testAlarm("first"), testAlarm("second")
	require.NoError(t, repo.Add(ctx, a1, &t1))
	require.NoError(t, repo.Add(ctx, a2, &t2))

	got := stored(t, store)
	require.Len(t, got, 2)
	require.Equal(t, a1.ID, got[0].ID)
	require.Equal(t, a2.ID, got[1].ID)
}

// TestAdd_Idempotent converges to a single entry for repeated identical calls.
func TestAdd_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store)

	a := testAlarm("repeat")
	for range 3 {
		require.NoError(t, repo.Add(ctx, a, &t1))
	}

	got := stored(t, store)
	require.Len(t, got, 1)
	require.Equal(t, a.ID, got[0].ID)
}

// TestAdd_EqualInstantInOtherZone treats the same instant in another location as the same time.
func TestAdd_EqualInstantInOtherZone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store)

	zone := time.FixedZone("UTC+2", 2*60*60)
	sameInstant := t1.In(zone)

	require.NoError(t, repo.Add(ctx, testAlarm("first"), &t1))
	require.NoError(t, repo.Add(ctx, testAlarm("second"), &sameInstant))

	got := stored(t, store)
	require.Len(t, got, 1)
	require.Equal(t, "second", got[0].TrackName)
}

// TestAdd_NoScheduledTime leaves storage untouched.
func TestAdd_NoScheduledTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store)

	require.NoError(t, repo.Add(ctx, testAlarm("ignored"), nil))
	_, err := store.Get(ctx, StorageKey)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Add(ctx, testAlarm("kept"), &t1))
	require.NoError(t, repo.Add(ctx, testAlarm("ignored"), nil))
	got := stored(t, store)
	require.Len(t, got, 1)
	require.Equal(t, "kept", got[0].TrackName)
}

// TestAdd_CorruptDataStartsFresh overwrites unreadable data with just the new alarm.
func TestAdd_CorruptDataStartsFresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, StorageKey, []byte("definitely not alarms")))

	repo := NewRepository(store)
	a := testAlarm("fresh")
	require.NoError(t, repo.Add(ctx, a, &t1))

	got := stored(t, store)
	require.Len(t, got, 1)
	require.Equal(t, a.ID, got[0].ID)
}

// TestLoad_DistinguishesAbsentFromCorrupt exposes the difference that Add hides.
func TestLoad_DistinguishesAbsentFromCorrupt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store)

	alarms, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, alarms)

	require.NoError(t, store.Set(ctx, StorageKey, []byte("{")))
	alarms, err = repo.Load(ctx)
	require.Nil(t, alarms)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

// TestRepository_StoreErrors surfaces storage I/O failures.
func TestRepository_StoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("disk full")

	writeFails := NewRepository(&failingStore{Store: storage.NewMemory(), setErr: boom})
	require.ErrorIs(t, writeFails.Add(ctx, testAlarm("a"), &t1), boom)

	readFails := NewRepository(&failingStore{Store: storage.NewMemory(), getErr: boom})
	require.ErrorIs(t, readFails.Add(ctx, testAlarm("a"), &t1), boom)
	_, err := readFails.List(ctx)
	require.ErrorIs(t, err, boom)
}

// TestRemove deletes by exact time and reports whether anything matched.
func TestRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	repo := NewRepository(store, WithKey("custom"))

	require.NoError(t, repo.Add(ctx, testAlarm("a"), &t1))
	require.NoError(t, repo.Add(ctx, testAlarm("b"), &t2))

	removed, err := repo.Remove(ctx, t1.Add(time.Second))
	require.NoError(t, err)
	require.False(t, removed)

	removed, err = repo.Remove(ctx, t1)
	require.NoError(t, err)
	require.True(t, removed)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "b", list[0].TrackName)

	_, err = store.Get(ctx, StorageKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
