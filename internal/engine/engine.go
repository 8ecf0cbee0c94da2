// Package engine implements the playback state machine that owns the media
// handle. An Engine is not safe for concurrent use: every method, and every
// callback it schedules, must run on a single loop (see package session).
package engine

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/tessro/moodplay/internal/core"
	errs "github.com/tessro/moodplay/internal/errors"
)

// DefaultVolume is applied when no volume option is given.
const DefaultVolume = 0.7

// Advance reasons reported to the observer.
const (
	ReasonNext  = "next"
	ReasonPrev  = "prev"
	ReasonEnded = "ended"
)

// Selector resolves a mood to a playlist.
type Selector interface {
	Resolve(mood core.Mood) core.Playlist
}

// Engine drives a core.Media through Idle, Loaded, Playing and Paused.
type Engine struct {
	media    core.Media
	selector Selector
	post     func(func())
	logger   zerolog.Logger
	observer Observer

	mood     core.Mood
	playlist core.Playlist
	index    int
	status   core.Status
	position time.Duration
	duration time.Duration
	volume   float64

	// intent is whether the user (or auto-advance) wants audio.
	intent bool
	// pending is true while the current token's start request is unresolved.
	pending bool
	// token identifies the latest start request; older resolutions are dropped.
	token uint64
	// source identifies the loaded media source; older callbacks are dropped.
	source uint64
	// loaded is false after the media refused the current track.
	loaded bool
	// suspended holds playback back without giving up intent.
	suspended bool
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets how media callbacks are handed back to the loop.
// The default runs them inline, which suits deterministic tests.
func WithScheduler(post func(func())) Option {
	return func(e *Engine) {
		if post != nil {
			e.post = post
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithVolume sets the initial volume, clamped into [0,1].
func WithVolume(v float64) Option {
	return func(e *Engine) {
		e.volume = core.ClampUnit(v)
	}
}

// New creates an engine and commits mood as the starting mood.
func New(media core.Media, selector Selector, mood core.Mood, opts ...Option) *Engine {
	e := &Engine{
		media:    media,
		selector: selector,
		post:     func(fn func()) { fn() },
		logger:   zerolog.Nop(),
		observer: nopObserver{},
		volume:   DefaultVolume,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.media.SetVolume(e.volume)
	e.SwitchMood(mood)
	return e
}

// SwitchMood commits mood, loads the first track of its playlist and resumes
// playback if playback was wanted before the switch.
func (e *Engine) SwitchMood(mood core.Mood) {
	if e.closed {
		return
	}

	resume := e.intent
	continuing := e.status == core.StatusPlaying
	e.supersede()

	e.mood = mood
	e.playlist = e.selector.Resolve(mood)
	e.index = 0
	e.position, e.duration = 0, 0
	e.observer.MoodSwitched(mood)

	if e.playlist.IsEmpty() {
		e.source++
		e.loaded = false
		e.media.Unload()
		e.setStatus(core.StatusIdle)
		e.logger.Warn().Err(errs.ErrEmptyPlaylist).Str("mood", mood.String()).Msg("idle until a mood with tracks")
		return
	}

	e.logger.Info().
		Str("mood", mood.String()).
		Str("playlist", e.playlist.Mood.String()).
		Int("tracks", e.playlist.Len()).
		Bool("resume", resume).
		Msg("mood switched")

	if err := e.load(); err != nil {
		e.loadFailed(err, resume)
		return
	}
	if !(resume && continuing) {
		e.setStatus(core.StatusLoaded)
	}
	if resume {
		e.start()
	}
}

// Play requests playback of the loaded track.
func (e *Engine) Play() {
	if e.closed || e.status == core.StatusIdle {
		return
	}
	if e.status == core.StatusPlaying || e.pending {
		e.intent = true
		return
	}
	e.start()
}

// Pause stops playback immediately and invalidates any pending start.
func (e *Engine) Pause() {
	if e.closed || e.status == core.StatusIdle {
		return
	}
	if e.status != core.StatusPlaying && !e.pending {
		// A suspended engine may still be waiting to resume.
		e.intent = false
		return
	}
	e.supersede()
	e.intent = false
	e.media.Pause()
	e.setStatus(core.StatusPaused)
}

// Suspend pauses the media but keeps play intent, so Resume picks up where
// playback left off. Commands that would start playback only record intent
// while suspended.
func (e *Engine) Suspend() {
	if e.closed || e.suspended {
		return
	}
	e.suspended = true
	if e.status != core.StatusPlaying && !e.pending {
		return
	}
	e.supersede()
	e.media.Pause()
	e.setStatus(core.StatusPaused)
	e.logger.Debug().Bool("intent", e.intent).Msg("suspended")
}

// Resume lifts a suspension and starts playback if it is still wanted.
func (e *Engine) Resume() {
	if e.closed || !e.suspended {
		return
	}
	e.suspended = false
	if e.intent && e.status != core.StatusIdle {
		e.start()
	}
}

// Suspended reports whether playback is held back.
func (e *Engine) Suspended() bool {
	return e.suspended
}

// TogglePlay pauses when playing (or starting, or waiting on a suspension)
// and plays otherwise.
func (e *Engine) TogglePlay() {
	if e.status == core.StatusPlaying || e.pending || (e.suspended && e.intent) {
		e.Pause()
		return
	}
	e.Play()
}

// Next advances to the following track and plays it.
func (e *Engine) Next() {
	e.advance(+1, ReasonNext)
}

// Prev steps back to the preceding track and plays it.
func (e *Engine) Prev() {
	e.advance(-1, ReasonPrev)
}

// OnTrackEnded is the media callback for natural end of track.
func (e *Engine) OnTrackEnded() {
	e.advance(+1, ReasonEnded)
}

// OnMetadataLoaded records the track duration. Play intent is untouched.
func (e *Engine) OnMetadataLoaded(d time.Duration) {
	if e.closed || e.status == core.StatusIdle {
		return
	}
	if d < 0 {
		d = 0
	}
	e.duration = d
	if e.position > d {
		e.position = d
	}
}

// OnTimeUpdate records the media position. Updates carry absolute values so
// the last one wins.
func (e *Engine) OnTimeUpdate(p time.Duration) {
	if e.closed || e.status == core.StatusIdle {
		return
	}
	e.position = e.clampPosition(p)
}

// Seek moves to fraction of the track. Out-of-range fractions are clamped;
// with an unknown duration the position stays at zero and the media is not touched.
func (e *Engine) Seek(fraction float64) {
	if e.closed || e.status == core.StatusIdle {
		return
	}
	f := core.ClampUnit(fraction)
	if e.duration <= 0 {
		e.position = 0
		return
	}
	target := time.Duration(f * float64(e.duration))
	e.position = target
	e.media.Seek(target)
}

// SetVolume clamps v into [0,1] and applies it.
func (e *Engine) SetVolume(v float64) {
	if e.closed {
		return
	}
	e.volume = core.ClampUnit(v)
	e.media.SetVolume(e.volume)
	e.observer.VolumeChanged(e.volume)
}

// SetSelector swaps the playlist source. It takes effect on the next switch.
func (e *Engine) SetSelector(s Selector) {
	if s != nil {
		e.selector = s
	}
}

// Close releases the media handle. Further calls are no-ops.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.supersede()
	e.intent = false
	e.source++
	e.setStatus(core.StatusIdle)
	e.closed = true
	return e.media.Close()
}

// Mood returns the committed mood.
func (e *Engine) Mood() core.Mood {
	return e.mood
}

// Playlist returns the playlist of the committed mood.
func (e *Engine) Playlist() core.Playlist {
	return e.playlist
}

// Status returns the current state.
func (e *Engine) Status() core.Status {
	return e.status
}

// Snapshot returns the observable state.
func (e *Engine) Snapshot() core.PlaybackState {
	s := core.PlaybackState{
		Mood:       e.mood,
		Status:     e.status,
		TrackIndex: e.index,
		TrackCount: e.playlist.Len(),
		IsPlaying:  e.status == core.StatusPlaying,
		Pending:    e.pending,
		Position:   e.position,
		Duration:   e.duration,
		Volume:     e.volume,
	}
	if e.status != core.StatusIdle {
		if t := e.playlist.Track(e.index); t != nil {
			track := *t
			s.Track = &track
		}
	}
	return s
}

func (e *Engine) advance(dir int, reason string) {
	if e.closed || e.status == core.StatusIdle {
		return
	}

	n := e.playlist.Len()
	continuing := e.status == core.StatusPlaying
	e.supersede()

	e.index = ((e.index+dir)%n + n) % n
	e.position, e.duration = 0, 0
	e.observer.TrackAdvanced(reason)

	if err := e.load(); err != nil {
		e.loadFailed(err, true)
		return
	}
	if !continuing {
		e.setStatus(core.StatusLoaded)
	}
	e.start()
}

// start issues an asynchronous start request under a fresh token. A track
// the media refused earlier is loaded again first.
func (e *Engine) start() {
	if e.suspended {
		e.intent = true
		return
	}
	if !e.loaded {
		if err := e.load(); err != nil {
			e.loadFailed(err, true)
			return
		}
	}

	e.intent = true
	e.token++
	token := e.token
	e.pending = true
	e.observer.PlayRequested()

	e.media.Play(func(err error) {
		e.post(func() { e.resolve(token, err) })
	})
}

// resolve applies the outcome of a start request if it is still current.
func (e *Engine) resolve(token uint64, err error) {
	if e.closed {
		return
	}

	if token != e.token {
		e.observer.StaleResolution()
		e.logger.Debug().Uint64("token", token).Uint64("current", e.token).Msg("dropped stale play resolution")
		// A late success must not leave audio running that nobody asked for.
		if err == nil && (!e.intent || e.suspended) {
			e.media.Pause()
		}
		return
	}

	e.pending = false
	if err != nil {
		e.intent = false
		e.setStatus(core.StatusPaused)
		e.observer.PlayRejected()
		e.logger.Warn().Err(errs.Rejected(err)).Str("track", e.trackTitle()).Msg("playback did not start")
		return
	}
	e.setStatus(core.StatusPlaying)
}

// supersede invalidates any outstanding start request.
func (e *Engine) supersede() {
	e.token++
	e.pending = false
}

func (e *Engine) load() error {
	e.source++
	source := e.source
	track := e.playlist.Tracks[e.index]

	events := core.MediaEvents{
		MetadataLoaded: func(d time.Duration) {
			e.post(func() {
				if e.current(source) {
					e.OnMetadataLoaded(d)
				}
			})
		},
		TimeUpdate: func(p time.Duration) {
			e.post(func() {
				if e.current(source) {
					e.OnTimeUpdate(p)
				}
			})
		},
		Ended: func() {
			e.post(func() {
				if e.current(source) {
					e.OnTrackEnded()
				}
			})
		},
	}

	if err := e.media.Load(track, events); err != nil {
		// Adapters keep the previous source on failure; drop it so nothing
		// from the superseded track can keep playing.
		e.loaded = false
		e.media.Unload()
		e.logger.Warn().Err(err).Str("track", track.Title).Msg("failed to load track")
		return err
	}
	e.loaded = true
	e.logger.Debug().Str("track", track.Title).Int("index", e.index).Msg("track loaded")
	return nil
}

// loadFailed settles in Paused with the refused track selected. When
// playback was wanted the failure counts as a rejection.
func (e *Engine) loadFailed(err error, wanted bool) {
	e.supersede()
	e.intent = false
	e.setStatus(core.StatusPaused)
	if wanted {
		e.observer.PlayRejected()
		e.logger.Warn().Err(errs.Rejected(err)).Str("track", e.trackTitle()).Msg("playback did not start")
	}
}

func (e *Engine) current(source uint64) bool {
	return !e.closed && source == e.source
}

func (e *Engine) clampPosition(p time.Duration) time.Duration {
	if p < 0 || e.duration <= 0 {
		return 0
	}
	if p > e.duration {
		return e.duration
	}
	return p
}

func (e *Engine) setStatus(s core.Status) {
	if s == e.status {
		return
	}
	prev := e.status
	e.status = s
	if (prev == core.StatusPlaying) != (s == core.StatusPlaying) {
		e.observer.PlayingChanged(s == core.StatusPlaying)
	}
	e.logger.Debug().Stringer("from", prev).Stringer("to", s).Msg("status")
}

func (e *Engine) trackTitle() string {
	if t := e.playlist.Track(e.index); t != nil {
		return t.Title
	}
	return ""
}
