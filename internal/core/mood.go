package core

import (
	"fmt"
	"strings"
	"time"
)

// Mood is a label used to select a playlist.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodRelaxed Mood = "relaxed"
)

// DefaultMood is committed at session start and is the selector fallback.
const DefaultMood = MoodRelaxed

// Moods lists every label in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodRelaxed}

// ParseMood parses a mood label, case-insensitively.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mood %q (must be happy, sad, angry, or relaxed)", s)
	}
	return m, nil
}

// Valid reports whether m is one of the known labels.
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodAngry, MoodRelaxed:
		return true
	}
	return false
}

// Emoji returns the face shown next to the mood.
func (m Mood) Emoji() string {
	switch m {
	case MoodHappy:
		return "😄"
	case MoodSad:
		return "😢"
	case MoodAngry:
		return "😡"
	case MoodRelaxed:
		return "😌"
	default:
		return "🙂"
	}
}

func (m Mood) String() string {
	return string(m)
}

// MoodEvent is a single classifier reading.
type MoodEvent struct {
	Mood       Mood      `json:"mood"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// NoFace is the reading emitted when no face is in frame.
func NoFace(at time.Time) MoodEvent {
	return MoodEvent{Mood: MoodRelaxed, Confidence: 0, Timestamp: at}
}

// ClampUnit clamps v into [0,1]. NaN becomes 0.
func ClampUnit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
