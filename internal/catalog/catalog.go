// Package catalog holds the playlist catalog model and the feed that publishes it.
package catalog

import (
	"slices"
	"time"
)

// Artist is a performer credited on a track.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track contains the track metadata needed for search and alarm playback.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	Album      string   `json:"album,omitempty"`
	DurationMs int      `json:"duration_ms"`
	Artists    []Artist `json:"artists"` // In Spotify credit order
}

// Playlist is a user playlist. Identity is the Spotify playlist ID.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// PlaylistTrack is a track as it appears in one playlist.
type PlaylistTrack struct {
	Track      Track     `json:"track"`
	PlaylistID string    `json:"playlist_id"`
	AddedAt    time.Time `json:"added_at"`
}

// Entry pairs a playlist with its tracks.
type Entry struct {
	Playlist Playlist
	Tracks   []PlaylistTrack
}

// Map is an ordered, read-only snapshot of the catalog: playlists in
// order, each with its tracks in order. A Map is never modified after
// construction; replace it with a new one instead.
type Map struct {
	entries []Entry
}

// NewMap builds a snapshot from the given entries. The entries are copied.
func NewMap(entries ...Entry) *Map {
	m := &Map{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		m.entries[i] = Entry{
			Playlist: e.Playlist,
			Tracks:   slices.Clone(e.Tracks),
		}
	}
	return m
}

// Len returns the number of playlists.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// TrackCount returns the number of playlist tracks across all playlists.
func (m *Map) TrackCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, e := range m.entries {
		n += len(e.Tracks)
	}
	return n
}

// Entries returns the playlists and their tracks in catalog order.
// The returned slice is a copy; track slices must not be modified.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return slices.Clone(m.entries)
}

// Playlists returns the playlists in catalog order.
func (m *Map) Playlists() []Playlist {
	if m == nil {
		return nil
	}
	playlists := make([]Playlist, len(m.entries))
	for i, e := range m.entries {
		playlists[i] = e.Playlist
	}
	return playlists
}

// Playlist looks up a playlist and its tracks by ID.
func (m *Map) Playlist(id string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	for _, e := range m.entries {
		if e.Playlist.ID == id {
			return Entry{Playlist: e.Playlist, Tracks: slices.Clone(e.Tracks)}, true
		}
	}
	return Entry{}, false
}
