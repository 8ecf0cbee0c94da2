package core

import (
	"fmt"
	"time"
)

// UnknownClock is shown for a duration that has not been reported yet.
const UnknownClock = "--:--"

// FormatClock renders d as mm:ss, truncating to whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ElapsedLabel returns the position as mm:ss.
func (s *PlaybackState) ElapsedLabel() string {
	return FormatClock(s.Position)
}

// DurationLabel returns the duration as mm:ss, or UnknownClock.
func (s *PlaybackState) DurationLabel() string {
	if s.Duration <= 0 {
		return UnknownClock
	}
	return FormatClock(s.Duration)
}

// ConfidencePercent returns the confidence as a whole percentage.
func (s *PlaybackState) ConfidencePercent() int {
	return int(s.Confidence*100 + 0.5)
}

// VolumePercent returns the volume as a whole percentage.
func (s *PlaybackState) VolumePercent() int {
	return int(s.Volume*100 + 0.5)
}
