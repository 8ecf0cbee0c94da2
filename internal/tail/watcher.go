package tail

import (
	"context"
	"time"

	"github.com/tessro/moodplay/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventMoodChange EventType = iota
	EventTrackChange
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventVolumeChange
	EventListeningChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// StateSource provides point-in-time snapshots.
type StateSource interface {
	Snapshot() core.PlaybackState
}

// Watcher polls a state source for changes and emits events.
type Watcher struct {
	source   StateSource
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source StateSource, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = 250 * time.Millisecond
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start polls until ctx is done or Stop is called. The first snapshot is
// reported as a mood change and, if loaded, a track change.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *core.PlaybackState
	emit := func(curr core.PlaybackState) {
		for _, e := range Diff(prev, &curr) {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}
		prev = &curr
	}

	emit(w.source.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			emit(w.source.Snapshot())
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// Diff compares two snapshots and returns the events between them.
func Diff(prev, curr *core.PlaybackState) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	if prev == nil {
		add(EventMoodChange)
		if curr.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	if prev.Mood != curr.Mood {
		add(EventMoodChange)
	}

	if trackChanged(prev, curr) {
		switch {
		case !prev.HasTrack():
			add(EventTrackChange)
		case wasCompleted(prev):
			add(EventTrackComplete)
		default:
			add(EventTrackSkip)
		}
		if curr.HasTrack() && prev.HasTrack() {
			add(EventTrackChange)
		}
	}

	if prev.IsPlaying && !curr.IsPlaying {
		add(EventPause)
	} else if !prev.IsPlaying && curr.IsPlaying {
		add(EventResume)
	}

	if prev.Volume != curr.Volume {
		add(EventVolumeChange)
	}

	if prev.Listening != curr.Listening {
		add(EventListeningChange)
	}

	return events
}

// trackChanged returns true if a different playlist entry is loaded.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.Source != curr.Track.Source || prev.TrackIndex != curr.TrackIndex
}

// wasCompleted returns true if the track likely completed naturally.
func wasCompleted(state *core.PlaybackState) bool {
	if state.Track == nil || state.Duration == 0 {
		return false
	}
	// Polling can miss the last moments of a track
	threshold := float64(state.Duration) * 0.95
	return float64(state.Position) >= threshold
}
