package core

import "time"

// Status is the engine's playback state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoaded
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoaded:
		return "loaded"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PlaybackState is a point-in-time snapshot of the controller.
type PlaybackState struct {
	Mood       Mood          `json:"mood"`
	Confidence float64       `json:"confidence"`
	Listening  bool          `json:"listening"`
	Status     Status        `json:"status"`
	Track      *Track        `json:"track"`
	TrackIndex int           `json:"track_index"`
	TrackCount int           `json:"track_count"`
	IsPlaying  bool          `json:"is_playing"`
	Pending    bool          `json:"pending"`
	Position   time.Duration `json:"position"`
	Duration   time.Duration `json:"duration"`
	Volume     float64       `json:"volume"`

	// MoodSince is when the committed mood last changed.
	MoodSince time.Time `json:"mood_since"`
}

// HasTrack returns true if there is a loaded track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}

// Fraction returns the playback position as a fraction of the duration.
func (s *PlaybackState) Fraction() float64 {
	return s.ProgressPercent() / 100
}
