// Package selector resolves a mood to the playlist the engine should load.
package selector

import (
	"slices"

	"github.com/tessro/moodplay/internal/core"
)

// Table maps moods to their ordered tracks.
type Table map[core.Mood][]core.Track

// Selector is an immutable mood to playlist lookup.
type Selector struct {
	table Table
}

// New copies t into a new selector. Later changes to t are not observed.
func New(t Table) *Selector {
	table := make(Table, len(t))
	for mood, tracks := range t {
		if len(tracks) == 0 {
			continue
		}
		table[mood] = append([]core.Track(nil), tracks...)
	}
	return &Selector{table: table}
}

// Resolve returns the playlist for mood. Unknown or empty moods fall back to
// relaxed; if relaxed has no tracks either, the empty playlist is returned.
// The tracks are a copy the caller may modify.
func (s *Selector) Resolve(mood core.Mood) core.Playlist {
	if tracks, ok := s.table[mood]; ok {
		return core.Playlist{Mood: mood, Tracks: slices.Clone(tracks)}
	}
	if tracks, ok := s.table[core.MoodRelaxed]; ok {
		return core.Playlist{Mood: core.MoodRelaxed, Tracks: slices.Clone(tracks)}
	}
	return core.EmptyPlaylist
}

// Len returns the number of moods with at least one track.
func (s *Selector) Len() int {
	return len(s.table)
}
