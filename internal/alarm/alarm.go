// Package alarm defines scheduled alarms and their persistence in a key-value store.
package alarm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
)

// StorageKey is the key the alarm list is stored under.
const StorageKey = "alarm_key"

// Alarm is one scheduled alarm and the track it plays.
// Alarms with equal Date values are duplicates.
type Alarm struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	PlaylistID   string    `json:"playlist_id"`
	PlaylistName string    `json:"playlist_name"`
	TrackID      string    `json:"track_id"`
	TrackName    string    `json:"track_name"`
	TrackURI     string    `json:"track_uri"`
	Artists      []string  `json:"artists,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// New builds an alarm that plays pt from playlist at date.
func New(date time.Time, playlist catalog.Playlist, pt catalog.PlaylistTrack) Alarm {
	artists := make([]string, len(pt.Track.Artists))
	for i, a := range pt.Track.Artists {
		artists[i] = a.Name
	}

	return Alarm{
		ID:           uuid.New(),
		Date:         date,
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		TrackID:      pt.Track.ID,
		TrackName:    pt.Track.Name,
		TrackURI:     pt.Track.URI,
		Artists:      artists,
		CreatedAt:    time.Now(),
	}
}

// DecodeError reports a stored alarm list that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding alarms: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serialises an alarm list.
func Encode(alarms []Alarm) ([]byte, error) {
	if alarms == nil {
		alarms = []Alarm{}
	}
	data, err := json.Marshal(alarms)
	if err != nil {
		return nil, fmt.Errorf("encoding alarms: %w", err)
	}
	return data, nil
}

// Decode parses an alarm list. Any malformed input yields a *DecodeError.
func Decode(data []byte) ([]Alarm, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty data")}
	}

	var alarms []Alarm
	if err := json.Unmarshal(data, &alarms); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if alarms == nil {
		return nil, &DecodeError{Err: errors.New("not an alarm list")}
	}
	return alarms, nil
}
