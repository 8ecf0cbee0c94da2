package engine

import "github.com/tessro/moodplay/internal/core"

// Observer receives engine events, typically for metrics.
type Observer interface {
	MoodSwitched(mood core.Mood)
	TrackAdvanced(reason string)
	PlayRequested()
	PlayRejected()
	StaleResolution()
	PlayingChanged(playing bool)
	VolumeChanged(volume float64)
}

type nopObserver struct{}

func (nopObserver) MoodSwitched(core.Mood) {}
func (nopObserver) TrackAdvanced(string) {}
func (nopObserver) PlayRequested() {}
func (nopObserver) PlayRejected() {}
func (nopObserver) StaleResolution() {}
func (nopObserver) PlayingChanged(bool) {}
func (nopObserver) VolumeChanged(float64) {}
