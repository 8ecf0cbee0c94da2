package core

import "strings"

// Track represents a playable audio track.
type Track struct {
	Title  string `json:"title" toml:"title"`
	Source string `json:"source" toml:"source"`
}

// IsSpotify returns true if the track points at a Spotify URI.
func (t Track) IsSpotify() bool {
	return strings.HasPrefix(t.Source, "spotify:")
}

// LocalPath returns the filesystem path for local sources.
func (t Track) LocalPath() string {
	return strings.TrimPrefix(t.Source, "file://")
}
