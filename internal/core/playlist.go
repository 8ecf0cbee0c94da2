package core

// Playlist is an ordered list of tracks for one mood.
// An empty playlist is the selector's "nothing playable" sentinel.
type Playlist struct {
	Mood   Mood    `json:"mood"`
	Tracks []Track `json:"tracks"`
}

// EmptyPlaylist is returned when neither the requested mood nor the
// fallback has tracks.
var EmptyPlaylist = Playlist{}

// Track returns the track at index i, or nil if out of range.
func (p *Playlist) Track(i int) *Track {
	if p == nil || i < 0 || i >= len(p.Tracks) {
		return nil
	}
	return &p.Tracks[i]
}

// Len returns the number of tracks in the playlist.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tracks)
}

// IsEmpty returns true if the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return p.Len() == 0
}
