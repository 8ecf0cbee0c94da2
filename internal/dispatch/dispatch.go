// Package dispatch decides when a classifier reading changes the committed mood.
package dispatch

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/tessro/moodplay/internal/core"
)

// Target is the component that owns the committed mood.
type Target interface {
	Mood() core.Mood
	SwitchMood(mood core.Mood)
}

// Hysteresis is an optional guard against thrashing between moods on
// borderline readings. The zero value disables it: every differing label
// switches immediately, even at confidence 0.
type Hysteresis struct {
	// MinConfidence ignores readings below this confidence for switching.
	MinConfidence float64
	// Hold requires this many consecutive readings of a new label.
	Hold int
}

// Enabled reports whether any guard is configured.
func (h Hysteresis) Enabled() bool {
	return h.MinConfidence > 0 || h.Hold > 1
}

// Dispatcher forwards mood changes to its target.
type Dispatcher struct {
	target     Target
	hysteresis Hysteresis
	logger     zerolog.Logger

	confidence float64
	lastSeen   time.Time
	since      time.Time

	candidate core.Mood
	streak    int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHysteresis enables the optional switching guard.
func WithHysteresis(h Hysteresis) Option {
	return func(d *Dispatcher) {
		d.hysteresis = h
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a dispatcher for target.
func New(target Target, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		target: target,
		logger: zerolog.Nop(),
		since:  time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnClassification handles one reading and reports whether the mood switched.
// Confidence is kept for display and does not gate the switch unless
// hysteresis is enabled.
func (d *Dispatcher) OnClassification(ev core.MoodEvent) bool {
	if !ev.Mood.Valid() {
		d.logger.Debug().Str("mood", string(ev.Mood)).Msg("ignoring unknown mood label")
		return false
	}

	d.confidence = core.ClampUnit(ev.Confidence)
	d.lastSeen = ev.Timestamp

	if ev.Mood == d.target.Mood() {
		d.candidate, d.streak = "", 0
		return false
	}

	if d.hysteresis.Enabled() && !d.admit(ev) {
		return false
	}

	d.candidate, d.streak = "", 0
	d.logger.Info().
		Str("from", d.target.Mood().String()).
		Str("to", ev.Mood.String()).
		Float64("confidence", d.confidence).
		Msg("mood changed")
	d.target.SwitchMood(ev.Mood)
	d.since = ev.Timestamp
	if d.since.IsZero() {
		d.since = time.Now()
	}
	return true
}

func (d *Dispatcher) admit(ev core.MoodEvent) bool {
	if ev.Confidence < d.hysteresis.MinConfidence {
		d.candidate, d.streak = "", 0
		return false
	}
	if ev.Mood != d.candidate {
		d.candidate, d.streak = ev.Mood, 0
	}
	d.streak++
	return d.streak >= d.hysteresis.Hold
}

// Confidence returns the confidence of the latest reading.
func (d *Dispatcher) Confidence() float64 {
	return d.confidence
}

// LastSeen returns when the latest reading was taken.
func (d *Dispatcher) LastSeen() time.Time {
	return d.lastSeen
}

// Since returns when the committed mood last changed.
func (d *Dispatcher) Since() time.Time {
	return d.since
}
