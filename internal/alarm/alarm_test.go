package alarm

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
)

// TestNew copies track and playlist details into the alarm.
func TestNew(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 15, 7, 30, 0, 0, time.UTC)
	playlist := catalog.Playlist{ID: "p1", Name: "Workout"}
	pt := catalog.PlaylistTrack{
		PlaylistID: "p1",
		Track: catalog.Track{
			ID:      "t1",
			Name:    "Eye of the Tiger",
			URI:     "spotify:track:t1",
			Artists: []catalog.Artist{{Name: "Survivor"}, {Name: "Guest"}},
		},
	}

	a := New(date, playlist, pt)
	require.NotEqual(t, uuid.Nil, a.ID)
	require.Equal(t, date, a.Date)
	require.Equal(t, "p1", a.PlaylistID)
	require.Equal(t, "Workout", a.PlaylistName)
	require.Equal(t, "t1", a.TrackID)
	require.Equal(t, "Eye of the Tiger", a.TrackName)
	require.Equal(t, "spotify:track:t1", a.TrackURI)
	require.Equal(t, []string{"Survivor", "Guest"}, a.Artists)
	require.False(t, a.CreatedAt.IsZero())

	other := New(date, playlist, pt)
	require.NotEqual(t, a.ID, other.ID)
}

// TestDecode_Malformed verifies every malformed input is reported as a DecodeError.
func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("\x00\x01binary")},
		{"object", []byte(`{"date":"2024-01-15T07:30:00Z"}`)},
		{"null", []byte("null")},
		{"truncated", []byte(`[{"date":`)},
		{"bad date", []byte(`[{"date":"tomorrow"}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			alarms, err := Decode(tt.data)
			require.Nil(t, alarms)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			require.Error(t, decodeErr.Unwrap())
		})
	}
}

// TestDecode_EmptyList is valid and distinct from a decode failure.
func TestDecode_EmptyList(t *testing.T) {
	t.Parallel()

	data, err := Encode(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	alarms, err := Decode(data)
	require.NoError(t, err)
	require.Empty(t, alarms)
}
