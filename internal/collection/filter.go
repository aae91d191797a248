package collection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
)

// ErrUnknownFilter is returned by ParseFilterType for unrecognised names.
var ErrUnknownFilter = errors.New("unknown filter type")

// FilterType selects which name a search text is matched against.
type FilterType int

const (
	// FilterTracks matches track names.
	FilterTracks FilterType = iota
	// FilterPlaylists matches playlist names and returns every track of a match.
	FilterPlaylists
	// FilterArtists matches the names of a track's artists.
	FilterArtists
)

func (f FilterType) String() string {
	switch f {
	case FilterTracks:
		return "tracks"
	case FilterPlaylists:
		return "playlists"
	case FilterArtists:
		return "artists"
	default:
		return fmt.Sprintf("FilterType(%d)", int(f))
	}
}

// ParseFilterType converts "tracks", "playlists" or "artists" to a FilterType.
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tracks":
		return FilterTracks, nil
	case "playlists":
		return FilterPlaylists, nil
	case "artists":
		return FilterArtists, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// Filter returns the playlist tracks of m matching searchText under mode.
// The search is a case-insensitive substring match; leading and trailing
// whitespace of searchText is ignored, so an empty search matches
// everything. Results follow catalog order and are never nil.
func Filter(m *catalog.Map, mode FilterType, searchText string) []catalog.PlaylistTrack {
	filtered := []catalog.PlaylistTrack{}
	if m == nil {
		return filtered
	}

	search := strings.ToLower(strings.TrimSpace(searchText))

	for _, entry := range m.Entries() {
		switch mode {
		case FilterTracks:
			for _, pt := range entry.Tracks {
				if contains(pt.Track.Name, search) {
					filtered = append(filtered, pt)
				}
			}
		case FilterPlaylists:
			if contains(entry.Playlist.Name, search) {
				filtered = append(filtered, entry.Tracks...)
			}
		case FilterArtists:
			for _, pt := range entry.Tracks {
				if anyArtistMatches(pt.Track.Artists, search) {
					filtered = append(filtered, pt)
				}
			}
		}
	}
	return filtered
}

func anyArtistMatches(artists []catalog.Artist, search string) bool {
	for _, a := range artists {
		if contains(a.Name, search) {
			return true
		}
	}
	return false
}

// contains reports whether the lowercased name contains the already-normalised search.
func contains(name, search string) bool {
	return strings.Contains(strings.ToLower(name), search)
}
