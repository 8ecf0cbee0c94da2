package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// ParseTemplate validates a format template.
func ParseTemplate(tmpl string) error {
	_, err := template.New("format").Parse(tmpl)
	return err
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e))
	}
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      EventTypeName(e.Type),
		Emoji:     eventEmoji(e),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if s := e.Current; s != nil {
		data.Mood = s.Mood.String()
		data.MoodEmoji = s.Mood.Emoji()
		data.Confidence = s.ConfidencePercent()
		data.Status = s.Status.String()
		data.Position = s.ElapsedLabel()
		data.Duration = s.DurationLabel()
		data.Volume = s.VolumePercent()
		data.Listening = s.Listening
		if s.Track != nil {
			data.Title = s.Track.Title
			data.Source = s.Track.Source
		}
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type       string
	Emoji      string
	Timestamp  time.Time
	Time       string
	Mood       string
	MoodEmoji  string
	Confidence int
	Status     string
	Title      string
	Source     string
	Position   string
	Duration   string
	Volume     int
	Listening  bool
}

func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventMoodChange:
		if e.Current != nil {
			return fmt.Sprintf("Mood: %s (%d%%)", e.Current.Mood, e.Current.ConfidencePercent())
		}
		return "Mood changed"

	case EventTrackChange:
		if e.Current != nil && e.Current.Track != nil {
			return fmt.Sprintf("Now playing: %s [%d/%d]",
				e.Current.Track.Title,
				e.Current.TrackIndex+1,
				e.Current.TrackCount)
		}
		return "Track changed"

	case EventTrackComplete:
		if e.Previous != nil && e.Previous.Track != nil {
			return fmt.Sprintf("Finished: %s", e.Previous.Track.Title)
		}
		return "Track completed"

	case EventTrackSkip:
		if e.Previous != nil && e.Previous.Track != nil {
			return fmt.Sprintf("Skipped: %s at %s", e.Previous.Track.Title, e.Previous.ElapsedLabel())
		}
		return "Track skipped"

	case EventPause:
		if e.Current != nil && !e.Current.HasTrack() {
			return "Stopped"
		}
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.VolumePercent())
		}
		return "Volume changed"

	case EventListeningChange:
		if e.Current != nil && e.Current.Listening {
			return "Listening: on"
		}
		return "Listening: off"

	default:
		return "Unknown event"
	}
}

func eventEmoji(e Event) string {
	switch e.Type {
	case EventMoodChange:
		if e.Current != nil {
			return e.Current.Mood.Emoji()
		}
		return "🎭"
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventVolumeChange:
		return "🔊"
	case EventListeningChange:
		return "👂"
	default:
		return "❓"
	}
}

// EventTypeName returns the stable name of an event type.
func EventTypeName(t EventType) string {
	switch t {
	case EventMoodChange:
		return "mood_change"
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventVolumeChange:
		return "volume_change"
	case EventListeningChange:
		return "listening_change"
	default:
		return "unknown"
	}
}
