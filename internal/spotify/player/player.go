// Package player drives a Spotify Connect device as a media output.
package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/core"
	moodErrors "github.com/tessro/moodplay/internal/errors"
	"github.com/tessro/moodplay/internal/spotify/client"
)

// DefaultPollInterval is how often remote playback state is read.
const DefaultPollInterval = time.Second

// completeThreshold is the fraction of a track that counts as finished.
const completeThreshold = 0.95

// API is the subset of the Web API client the player uses.
type API interface {
	Play(ctx context.Context, deviceID string, opts *client.PlayOptions) error
	Pause(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, positionMs int, deviceID string) error
	SetVolume(ctx context.Context, percent int, deviceID string) error
	GetPlaybackState(ctx context.Context) (*client.PlaybackState, error)
}

// Player implements core.Media on top of a Spotify Connect device.
//
// Spotify has no notion of a loaded but unstarted track, so Load only
// records the URI; the first Play starts it from the requested offset and
// later Plays resume.
type Player struct {
	api      API
	deviceID string
	interval time.Duration
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	gen        uint64
	uri        string
	events     core.MediaEvents
	started    bool
	startAt    time.Duration
	stopPoll   context.CancelFunc
	lastSample sample
	closed     bool
}

// Option configures a Player.
type Option func(*Player)

// WithDevice targets a specific device instead of the active one.
func WithDevice(deviceID string) Option {
	return func(p *Player) { p.deviceID = deviceID }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// New creates a Spotify media output.
func New(api API, opts ...Option) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		api:      api,
		interval: DefaultPollInterval,
		logger:   zerolog.Nop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load records the track to start on the next Play.
func (p *Player) Load(track core.Track, events core.MediaEvents) error {
	if !track.IsSpotify() {
		return moodErrors.WithSuggestion(moodErrors.ErrUnsupportedSource,
			"The spotify output only plays spotify: URIs")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	p.uri = track.Source
	p.events = events
	return nil
}

// Play starts the loaded track or resumes it. resolve runs on a background
// goroutine once the API answers.
func (p *Player) Play(resolve func(error)) {
	p.mu.Lock()
	if p.closed || p.uri == "" {
		p.mu.Unlock()
		resolve(moodErrors.Rejected(moodErrors.ErrNoSource))
		return
	}
	gen := p.gen
	var opts *client.PlayOptions
	if !p.started {
		opts = &client.PlayOptions{
			URIs:       []string{p.uri},
			PositionMS: int(p.startAt / time.Millisecond),
		}
	}
	p.mu.Unlock()

	go func() {
		err := p.api.Play(p.ctx, p.deviceID, opts)
		if err != nil && opts == nil && client.IsAlreadyPlayingError(err) {
			err = nil
		}
		if err != nil {
			p.logger.Debug().Err(err).Msg("play rejected")
			resolve(moodErrors.Rejected(err))
			return
		}

		p.mu.Lock()
		if gen == p.gen && !p.closed {
			p.started = true
			p.startPollLocked()
		}
		p.mu.Unlock()
		resolve(nil)
	}()
}

// Pause pauses the device if the track was started.
func (p *Player) Pause() {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return
	}
	p.async("pause", func(ctx context.Context) error {
		return p.api.Pause(ctx, p.deviceID)
	})
}

// Seek moves the device, or the start offset when not yet started.
func (p *Player) Seek(position time.Duration) {
	p.mu.Lock()
	if !p.started {
		p.startAt = position
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	ms := int(position / time.Millisecond)
	p.async("seek", func(ctx context.Context) error {
		return p.api.Seek(ctx, ms, p.deviceID)
	})
}

// SetVolume maps the unit volume onto the device's percent scale.
func (p *Player) SetVolume(volume float64) {
	percent := VolumePercent(volume)
	p.async("volume", func(ctx context.Context) error {
		return p.api.SetVolume(ctx, percent, p.deviceID)
	})
}

// Unload forgets the track and pauses the device if it was playing it.
func (p *Player) Unload() {
	p.mu.Lock()
	started := p.started
	p.resetLocked()
	p.mu.Unlock()

	if started {
		p.async("pause", func(ctx context.Context) error {
			return p.api.Pause(ctx, p.deviceID)
		})
	}
}

// Close stops polling and cancels in-flight requests.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.resetLocked()
	p.cancel()
	return nil
}

func (p *Player) resetLocked() {
	p.gen++
	if p.stopPoll != nil {
		p.stopPoll()
		p.stopPoll = nil
	}
	p.uri = ""
	p.events = core.MediaEvents{}
	p.started = false
	p.startAt = 0
	p.lastSample = sample{}
}

func (p *Player) async(op string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(p.ctx); err != nil && p.ctx.Err() == nil {
			p.logger.Warn().Err(err).Str("op", op).Msg("spotify command failed")
		}
	}()
}

func (p *Player) startPollLocked() {
	if p.stopPoll != nil {
		return
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.stopPoll = cancel
	go p.poll(ctx, p.gen)
}

func (p *Player) poll(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, err := p.api.GetPlaybackState(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Debug().Err(err).Msg("playback state poll failed")
			}
			continue
		}
		if !p.observe(gen, state) {
			return
		}
	}
}

// observe feeds one poll result into the event callbacks. It returns false
// once the track has ended or the generation is stale.
func (p *Player) observe(gen uint64, state *client.PlaybackState) bool {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return false
	}
	events := p.events
	prev := p.lastSample
	curr := sampleOf(p.uri, state)

	if ended(prev, curr) {
		p.started = false
		p.startAt = 0
		p.stopPoll = nil
		p.lastSample = sample{}
		p.mu.Unlock()
		events.EmitEnded()
		return false
	}

	if !curr.ours {
		p.mu.Unlock()
		return true
	}
	p.lastSample = curr
	p.mu.Unlock()

	if curr.duration != prev.duration {
		events.EmitMetadata(curr.duration)
	}
	events.EmitTime(curr.progress)
	return true
}

// sample is one observation of remote playback for the loaded URI.
type sample struct {
	ours     bool
	playing  bool
	progress time.Duration
	duration time.Duration
}

func sampleOf(uri string, state *client.PlaybackState) sample {
	if state == nil || state.Item == nil || state.Item.URI != uri {
		return sample{}
	}
	return sample{
		ours:     true,
		playing:  state.IsPlaying,
		progress: time.Duration(state.ProgressMS) * time.Millisecond,
		duration: time.Duration(state.Item.DurationMS) * time.Millisecond,
	}
}

// ended reports whether the loaded track finished between two samples.
// Spotify stops on the last item of a uris list, usually rewinding to 0.
func ended(prev, curr sample) bool {
	if !prev.ours || !wasCompleted(prev) {
		return false
	}
	if !curr.ours {
		return true
	}
	return !curr.playing && curr.progress < prev.progress
}

// wasCompleted returns true if the sample is close enough to the end.
func wasCompleted(s sample) bool {
	if s.duration == 0 {
		return false
	}
	return float64(s.progress) >= float64(s.duration)*completeThreshold
}

// VolumePercent converts a unit volume to Spotify's 0-100 scale.
func VolumePercent(volume float64) int {
	return int(math.Round(core.ClampUnit(volume) * 100))
}

// Ensure Player implements core.Media
var _ core.Media = (*Player)(nil)
