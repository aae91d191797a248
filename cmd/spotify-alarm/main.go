// Command spotify-alarm schedules alarms that wake you with tracks from your Spotify playlists.
package main

import "github.com/justestif/go-spotify-alarm/cmd/spotify-alarm/cmd"

func main() {
	cmd.Execute()
}
