package tail

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tessro/moodplay/internal/core"
)

var (
	calm  = &core.Track{Title: "Calm", Source: "calm.mp3"}
	sunny = &core.Track{Title: "Sunny", Source: "sunny.mp3"}
)

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffStates(t *testing.T) {
	base := core.PlaybackState{
		Mood:       core.MoodRelaxed,
		Track:      calm,
		TrackCount: 2,
		Status:     core.StatusPlaying,
		IsPlaying:  true,
		Position:   10 * time.Second,
		Duration:   100 * time.Second,
		Volume:     0.7,
	}
	with := func(fn func(s *core.PlaybackState)) *core.PlaybackState {
		s := base
		fn(&s)
		return &s
	}

	tests := []struct {
		name string
		prev *core.PlaybackState
		curr *core.PlaybackState
		want []EventType
	}{
		{
			name: "first poll",
			prev: nil,
			curr: &base,
			want: []EventType{EventMoodChange, EventTrackChange},
		},
		{
			name: "no change",
			prev: &base,
			curr: &base,
			want: nil,
		},
		{
			name: "mood switch loads a new track",
			prev: &base,
			curr: with(func(s *core.PlaybackState) {
				s.Mood = core.MoodHappy
				s.Track = sunny
				s.Position = 0
			}),
			want: []EventType{EventMoodChange, EventTrackSkip, EventTrackChange},
		},
		{
			name: "natural end",
			prev: with(func(s *core.PlaybackState) { s.Position = 98 * time.Second }),
			curr: with(func(s *core.PlaybackState) { s.TrackIndex = 1; s.Position = 0 }),
			want: []EventType{EventTrackComplete, EventTrackChange},
		},
		{
			name: "pause",
			prev: &base,
			curr: with(func(s *core.PlaybackState) { s.IsPlaying = false; s.Status = core.StatusPaused }),
			want: []EventType{EventPause},
		},
		{
			name: "resume",
			prev: with(func(s *core.PlaybackState) { s.IsPlaying = false }),
			curr: &base,
			want: []EventType{EventResume},
		},
		{
			name: "volume and listening",
			prev: &base,
			curr: with(func(s *core.PlaybackState) { s.Volume = 0.5; s.Listening = true }),
			want: []EventType{EventVolumeChange, EventListeningChange},
		},
		{
			name: "idle",
			prev: &base,
			curr: with(func(s *core.PlaybackState) {
				s.Track = nil
				s.Status = core.StatusIdle
				s.IsPlaying = false
			}),
			want: []EventType{EventTrackSkip, EventPause},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(Diff(tt.prev, tt.curr))
			if !equalTypes(got, tt.want) {
				t.Errorf("Diff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatLine(t *testing.T) {
	curr := &core.PlaybackState{
		Mood:       core.MoodHappy,
		Confidence: 0.83,
		Track:      sunny,
		TrackCount: 3,
		Volume:     0.4,
	}
	prev := &core.PlaybackState{Track: calm, Position: 65 * time.Second}

	tests := []struct {
		event Event
		want  string
	}{
		{Event{Type: EventMoodChange, Current: curr}, "😄 Mood: happy (83%)"},
		{Event{Type: EventTrackChange, Current: curr}, "🎵 Now playing: Sunny [1/3]"},
		{Event{Type: EventTrackSkip, Previous: prev, Current: curr}, "⏭️ Skipped: Calm at 01:05"},
		{Event{Type: EventVolumeChange, Current: curr}, "🔊 Volume: 40%"},
		{Event{Type: EventListeningChange, Current: curr}, "👂 Listening: off"},
	}

	f := NewFormatter()
	for _, tt := range tests {
		if got := f.Format(tt.event); got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", EventTypeName(tt.event.Type), got, tt.want)
		}
	}
}

func TestFormatOptions(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 30, 5, 0, time.UTC)
	e := Event{Type: EventResume, Timestamp: ts, Current: &core.PlaybackState{}}

	f := NewFormatter(WithEmoji(false), WithTimestamp(true))
	if got := f.Format(e); got != "09:30:05 Resumed" {
		t.Errorf("Format() = %q", got)
	}
}

func TestFormatTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}} {{.Mood}} {{.Title}} {{.Position}}/{{.Duration}}"))
	e := Event{Type: EventTrackChange, Current: &core.PlaybackState{
		Mood:     core.MoodSad,
		Track:    calm,
		Position: 5 * time.Second,
	}}
	if got := f.Format(e); got != "track_change sad Calm 00:05/--:--" {
		t.Errorf("Format() = %q", got)
	}

	if err := ParseTemplate("{{.Broken"); err == nil {
		t.Error("ParseTemplate() accepted a broken template")
	}
}

type fakeSource struct {
	mu    sync.Mutex
	state core.PlaybackState
}

func (f *fakeSource) Snapshot() core.PlaybackState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSource) set(fn func(s *core.PlaybackState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.state)
}

func TestWatcher(t *testing.T) {
	src := &fakeSource{state: core.PlaybackState{Mood: core.MoodRelaxed, Track: calm}}
	w := NewWatcher(src, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	var seen []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-w.Events():
			if !ok {
				t.Fatal("events closed early")
			}
			seen = append(seen, EventTypeName(e.Type))
			if e.Type == EventTrackChange {
				src.set(func(s *core.PlaybackState) { s.IsPlaying = true })
			}
			if e.Type == EventResume {
				joined := strings.Join(seen, ",")
				if joined != "mood_change,track_change,resume" {
					t.Errorf("events = %s", joined)
				}
				w.Stop()
				return
			}
		case <-timeout:
			t.Fatalf("no resume event; saw %v", seen)
		}
	}
}
