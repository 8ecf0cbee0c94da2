// Package local plays files through the default sound device.
package local

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/core"
	moodErrors "github.com/tessro/moodplay/internal/errors"
)

const (
	DefaultSampleRate   = beep.SampleRate(48000)
	DefaultBufferSize   = 100 * time.Millisecond
	DefaultTickInterval = 250 * time.Millisecond

	resampleQuality = 4
)

// Output is a core.Media backed by the beep speaker. The speaker is opened
// on the first Play so that loading and seeking work without a device.
type Output struct {
	sampleRate beep.SampleRate
	bufferSize time.Duration
	tick       time.Duration
	logger     zerolog.Logger

	mu          sync.Mutex
	gen         uint64
	cur         *handle
	volume      float64
	initialized bool
	closed      bool
}

// handle is one decoded source and its control chain.
type handle struct {
	gen       uint64
	stream    beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	vol       *effects.Volume
	events    core.MediaEvents
	queued    bool
	reporting bool
	stop      chan struct{}
}

// Option configures an Output.
type Option func(*Output)

// WithSampleRate sets the speaker rate every source is resampled to.
func WithSampleRate(sr int) Option {
	return func(o *Output) {
		if sr > 0 {
			o.sampleRate = beep.SampleRate(sr)
		}
	}
}

// WithTickInterval sets how often position updates are reported.
func WithTickInterval(d time.Duration) Option {
	return func(o *Output) {
		if d > 0 {
			o.tick = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Output) { o.logger = logger }
}

// New creates a speaker output.
func New(opts ...Option) *Output {
	o := &Output{
		sampleRate: DefaultSampleRate,
		bufferSize: DefaultBufferSize,
		tick:       DefaultTickInterval,
		logger:     zerolog.Nop(),
		volume:     1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load decodes track and leaves it paused at the start. The duration is
// reported asynchronously through events.
func (o *Output) Load(track core.Track, events core.MediaEvents) error {
	path, err := localPath(track)
	if err != nil {
		return err
	}

	stream, format, err := decode(path)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		_ = stream.Close()
		return moodErrors.ErrNoSource
	}
	o.releaseLocked()

	o.gen++
	var src beep.Streamer = stream
	if format.SampleRate != o.sampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, o.sampleRate, stream)
	}
	ctrl := &beep.Ctrl{Streamer: src, Paused: true}
	vol := &effects.Volume{Streamer: ctrl, Base: 2}
	applyGain(vol, o.volume)

	o.cur = &handle{
		gen:    o.gen,
		stream: stream,
		format: format,
		ctrl:   ctrl,
		vol:    vol,
		events: events,
		stop:   make(chan struct{}),
	}

	duration := format.SampleRate.D(stream.Len())
	go events.EmitMetadata(duration)

	o.logger.Debug().Str("path", path).Dur("duration", duration).Msg("decoded")
	return nil
}

// Play unpauses the loaded source, opening the speaker if needed.
func (o *Output) Play(resolve func(error)) {
	o.mu.Lock()
	h := o.cur
	if o.closed || h == nil {
		o.mu.Unlock()
		go resolve(moodErrors.Rejected(moodErrors.ErrNoSource))
		return
	}

	if !o.initialized {
		if err := speaker.Init(o.sampleRate, o.sampleRate.N(o.bufferSize)); err != nil {
			o.mu.Unlock()
			go resolve(moodErrors.Rejected(fmt.Errorf("failed to open audio device: %w", err)))
			return
		}
		o.initialized = true
	}

	if !h.queued {
		gen := h.gen
		speaker.Clear()
		speaker.Play(beep.Seq(h.vol, beep.Callback(func() {
			// Runs with the speaker locked.
			go o.finished(gen)
		})))
		h.queued = true
	}
	if !h.reporting {
		h.reporting = true
		go o.report(h)
	}

	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
	o.mu.Unlock()

	go resolve(nil)
}

// Pause freezes the loaded source.
func (o *Output) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return
	}
	o.withSpeaker(func() { o.cur.ctrl.Paused = true })
}

// Seek moves the loaded source, clamped to its length.
func (o *Output) Seek(position time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	h := o.cur
	if h == nil {
		return
	}
	o.withSpeaker(func() {
		n := h.format.SampleRate.N(position)
		if last := h.stream.Len() - 1; n > last {
			n = last
		}
		if n < 0 {
			n = 0
		}
		if err := h.stream.Seek(n); err != nil {
			o.logger.Warn().Err(err).Msg("seek failed")
		}
	})
}

// SetVolume sets the unit volume for this and later sources.
func (o *Output) SetVolume(volume float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = core.ClampUnit(volume)
	if o.cur != nil {
		o.withSpeaker(func() { applyGain(o.cur.vol, o.volume) })
	}
}

// Unload stops and releases the loaded source.
func (o *Output) Unload() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.releaseLocked()
}

// Close releases the source and the speaker.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.releaseLocked()
	if o.initialized {
		speaker.Close()
	}
	return nil
}

func (o *Output) releaseLocked() {
	h := o.cur
	if h == nil {
		return
	}
	o.cur = nil
	o.gen++
	close(h.stop)
	if h.queued {
		speaker.Clear()
	}
	if err := h.stream.Close(); err != nil {
		o.logger.Debug().Err(err).Msg("close stream")
	}
}

// withSpeaker runs fn holding the speaker lock once the speaker exists.
func (o *Output) withSpeaker(fn func()) {
	if !o.initialized {
		fn()
		return
	}
	speaker.Lock()
	fn()
	speaker.Unlock()
}

func (o *Output) finished(gen uint64) {
	o.mu.Lock()
	h := o.cur
	if h == nil || h.gen != gen {
		o.mu.Unlock()
		return
	}
	h.queued = false
	events := h.events
	o.mu.Unlock()

	events.EmitEnded()
}

// report emits the position while the handle is live and not paused.
func (o *Output) report(h *handle) {
	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		speaker.Lock()
		paused := h.ctrl.Paused
		pos := h.format.SampleRate.D(h.stream.Position())
		speaker.Unlock()

		if !paused {
			h.events.EmitTime(pos)
		}
	}
}

// Gain converts a unit volume to the exponent used by effects.Volume with
// base 2. Zero volume is reported as silent.
func Gain(volume float64) (exponent float64, silent bool) {
	volume = core.ClampUnit(volume)
	if volume == 0 {
		return 0, true
	}
	return math.Log2(volume), false
}

func applyGain(v *effects.Volume, volume float64) {
	v.Volume, v.Silent = Gain(volume)
}

func localPath(track core.Track) (string, error) {
	src := track.Source
	switch {
	case src == "":
		return "", moodErrors.ErrNoSource
	case track.IsSpotify(), strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return "", moodErrors.WithSuggestion(
			fmt.Errorf("%w: %s", moodErrors.ErrUnsupportedSource, src),
			"Use the spotify output for spotify: URIs")
	}
	return track.LocalPath(), nil
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" && ext != ".wav" {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", moodErrors.ErrUnsupportedSource, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	if ext == ".mp3" {
		stream, format, err = mp3.Decode(f)
	} else {
		stream, format, err = wav.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return stream, format, nil
}

// Ensure Output implements core.Media
var _ core.Media = (*Output)(nil)
