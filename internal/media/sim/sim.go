// Package sim is a media output that plays nothing. It runs a virtual clock
// so the rest of the program can be exercised without a sound device.
package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/core"
	moodErrors "github.com/tessro/moodplay/internal/errors"
)

// ErrSimulatedRejection is returned for every Play when rejection is on.
var ErrSimulatedRejection = errors.New("simulated play rejection")

// Config holds the simulation parameters.
type Config struct {
	// TrackLength is the duration of every track; zero means unknown.
	TrackLength time.Duration
	// Latency delays each play resolution.
	Latency time.Duration
	// Tick is the clock step; zero disables the clock so tests can Advance.
	Tick time.Duration
	// RejectPlay makes every start request fail.
	RejectPlay bool
}

// Output is a simulated core.Media.
type Output struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	gen      uint64
	loaded   bool
	track    core.Track
	events   core.MediaEvents
	playing  bool
	position time.Duration
	volume   float64
	reject   bool
	closed   bool
	stop     chan struct{}
}

// New creates a simulated output and starts its clock.
func New(cfg Config, logger zerolog.Logger) *Output {
	o := &Output{
		cfg:    cfg,
		logger: logger,
		reject: cfg.RejectPlay,
		stop:   make(chan struct{}),
	}
	if cfg.Tick > 0 {
		go o.run()
	}
	return o
}

func (o *Output) run() {
	ticker := time.NewTicker(o.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			o.Advance(o.cfg.Tick)
		}
	}
}

// Load replaces the current source.
func (o *Output) Load(track core.Track, events core.MediaEvents) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return moodErrors.ErrNoSource
	}
	if track.Source == "" {
		return moodErrors.ErrNoSource
	}

	o.gen++
	o.loaded = true
	o.track = track
	o.events = events
	o.playing = false
	o.position = 0

	if d := o.cfg.TrackLength; d > 0 {
		go events.EmitMetadata(d)
	}
	o.logger.Debug().Str("track", track.Title).Msg("sim loaded")
	return nil
}

// Play resolves after the configured latency.
func (o *Output) Play(resolve func(error)) {
	o.mu.Lock()
	if o.closed || !o.loaded {
		o.mu.Unlock()
		go resolve(moodErrors.Rejected(moodErrors.ErrNoSource))
		return
	}
	gen := o.gen
	reject := o.reject
	o.mu.Unlock()

	time.AfterFunc(o.cfg.Latency, func() {
		if reject {
			resolve(moodErrors.Rejected(ErrSimulatedRejection))
			return
		}
		o.mu.Lock()
		if gen == o.gen && o.loaded {
			o.playing = true
		}
		o.mu.Unlock()
		resolve(nil)
	})
}

// Pause stops the clock for the loaded source.
func (o *Output) Pause() {
	o.mu.Lock()
	o.playing = false
	o.mu.Unlock()
}

// Seek moves the virtual position.
func (o *Output) Seek(position time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if position < 0 {
		position = 0
	}
	if d := o.cfg.TrackLength; d > 0 && position > d {
		position = d
	}
	o.position = position
}

// SetVolume records the volume.
func (o *Output) SetVolume(volume float64) {
	o.mu.Lock()
	o.volume = volume
	o.mu.Unlock()
}

// Unload drops the source and its events.
func (o *Output) Unload() {
	o.mu.Lock()
	o.gen++
	o.loaded = false
	o.playing = false
	o.position = 0
	o.events = core.MediaEvents{}
	o.mu.Unlock()
}

// Close stops the clock.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.loaded = false
	o.playing = false
	close(o.stop)
	return nil
}

// Advance moves the clock by d, emitting a time update and, at the end of
// the track, the ended event.
func (o *Output) Advance(d time.Duration) {
	o.mu.Lock()
	if !o.loaded || !o.playing {
		o.mu.Unlock()
		return
	}
	o.position += d
	length := o.cfg.TrackLength
	ended := length > 0 && o.position >= length
	if ended {
		o.position = length
		o.playing = false
	}
	events := o.events
	pos := o.position
	o.mu.Unlock()

	events.EmitTime(pos)
	if ended {
		events.EmitEnded()
	}
}

// SetRejectPlay toggles rejection of later start requests.
func (o *Output) SetRejectPlay(reject bool) {
	o.mu.Lock()
	o.reject = reject
	o.mu.Unlock()
}

// Playing reports whether the virtual clock is running.
func (o *Output) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

// Position returns the virtual position.
func (o *Output) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

// Volume returns the last volume set.
func (o *Output) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// Track returns the loaded track.
func (o *Output) Track() (core.Track, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.track, o.loaded
}

// Ensure Output implements core.Media
var _ core.Media = (*Output)(nil)
