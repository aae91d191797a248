// Package config defines the settings of the spotify-alarm binary and
// provides helpers to load, validate and save them in YAML format.
//
// Spotify application credentials are not part of the file; they are read
// from the SPOTIFY_ID and SPOTIFY_SECRET environment variables.
package config
