// Package session runs the playback engine, the mood dispatcher and the
// classifier on one event loop and publishes snapshots to observers.
//
// All methods are safe for concurrent use. Commands are queued and applied
// in order by Run; they never block the caller.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/classifier"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/dispatch"
	"github.com/tessro/moodplay/internal/engine"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("session already running")

// Observer extends the engine observer with session level events.
type Observer interface {
	engine.Observer
	Classified(mood core.Mood)
	ClassifierFailed()
	ListeningChanged(listening bool)
}

// Config wires a session.
type Config struct {
	Media       core.Media
	Selector    engine.Selector
	InitialMood core.Mood
	Volume      float64

	// Classifier is optional; without one listening cannot be turned on.
	Classifier classifier.Classifier
	Interval   time.Duration
	// Listen turns listening on when Run starts.
	Listen     bool
	Hysteresis dispatch.Hysteresis

	// PauseWhenNotListening holds playback while listening is off, including
	// after a classifier failure, and resumes it when listening returns.
	PauseWhenNotListening bool

	Logger   zerolog.Logger
	Observer Observer
}

// Session owns the loop.
type Session struct {
	id       string
	cfg      Config
	logger   zerolog.Logger
	observer Observer
	running  atomic.Bool

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	done  chan struct{}

	// Loop-owned state.
	engine     *engine.Engine
	dispatcher *dispatch.Dispatcher
	ctx        context.Context
	listening  bool
	runnerGen  uint64
	stopRunner context.CancelFunc

	subMu    sync.Mutex
	subs     map[int]chan core.PlaybackState
	nextSub  int
	latest   core.PlaybackState
	playlist core.Playlist
	lastHash uint64
	lastMood core.Mood
	since    time.Time
	closed   bool
}

// New creates a session. The initial mood's first track is loaded
// immediately; nothing plays until Play or Run with a classifier.
func New(cfg Config) *Session {
	if !cfg.InitialMood.Valid() {
		cfg.InitialMood = core.DefaultMood
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		observer: cfg.Observer,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		subs:     make(map[int]chan core.PlaybackState),
	}
	s.logger = cfg.Logger.With().Str("component", "session").Str("session", s.id).Logger()

	s.engine = engine.New(cfg.Media, cfg.Selector, cfg.InitialMood,
		engine.WithScheduler(s.post),
		engine.WithLogger(cfg.Logger.With().Str("component", "engine").Logger()),
		engine.WithObserver(cfg.Observer),
		engine.WithVolume(cfg.Volume),
	)
	s.dispatcher = dispatch.New(s.engine,
		dispatch.WithHysteresis(cfg.Hysteresis),
		dispatch.WithLogger(cfg.Logger.With().Str("component", "dispatch").Logger()),
	)
	s.publish()
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run processes commands until ctx is cancelled, then releases the media.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	s.ctx = ctx
	s.logger.Info().Str("mood", s.engine.Mood().String()).Msg("session started")
	if s.cfg.Listen {
		s.setListening(true)
	}
	s.publish()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-s.wake:
			for _, fn := range s.drain() {
				fn()
			}
			s.publish()
		}
	}
}

func (s *Session) shutdown() {
	s.stopListening()
	if err := s.engine.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to close media")
	}
	s.publish()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.logger.Info().Msg("session stopped")
}

// post queues fn for the loop. It never blocks.
func (s *Session) post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) drain() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

// Commands.

func (s *Session) Play() { s.post(s.engine.Play) }
func (s *Session) Pause() { s.post(s.engine.Pause) }
func (s *Session) TogglePlay() { s.post(s.engine.TogglePlay) }
func (s *Session) Next() { s.post(s.engine.Next) }
func (s *Session) Prev() { s.post(s.engine.Prev) }

// Seek moves to a fraction of the current track.
func (s *Session) Seek(fraction float64) {
	s.post(func() { s.engine.Seek(fraction) })
}

// SeekBy moves relative to the current position.
func (s *Session) SeekBy(delta time.Duration) {
	s.post(func() {
		snap := s.engine.Snapshot()
		if snap.Duration <= 0 {
			return
		}
		s.engine.Seek(float64(snap.Position+delta) / float64(snap.Duration))
	})
}

// SetVolume sets the volume; it is clamped into [0,1].
func (s *Session) SetVolume(v float64) {
	s.post(func() { s.engine.SetVolume(v) })
}

// AdjustVolume changes the volume by delta.
func (s *Session) AdjustVolume(delta float64) {
	s.post(func() { s.engine.SetVolume(s.engine.Snapshot().Volume + delta) })
}

// SwitchMood overrides the committed mood by hand.
func (s *Session) SwitchMood(mood core.Mood) {
	s.post(func() {
		if !mood.Valid() || mood == s.engine.Mood() {
			return
		}
		s.logger.Info().Str("mood", mood.String()).Msg("manual mood switch")
		s.engine.SwitchMood(mood)
	})
}

// SetListening turns the classifier on or off.
func (s *Session) SetListening(on bool) {
	s.post(func() { s.setListening(on) })
}

// ToggleListening flips the listening flag.
func (s *Session) ToggleListening() {
	s.post(func() { s.setListening(!s.listening) })
}

// Reload swaps the playlist source. An idle engine retries the current mood
// so a catalog that gained tracks starts being used immediately.
func (s *Session) Reload(sel engine.Selector) {
	s.post(func() {
		s.engine.SetSelector(sel)
		s.logger.Info().Msg("catalog reloaded")
		if s.engine.Status() == core.StatusIdle {
			s.engine.SwitchMood(s.engine.Mood())
		}
	})
}

func (s *Session) setListening(on bool) {
	if on == s.listening {
		return
	}
	if on {
		if s.cfg.Classifier == nil {
			s.logger.Warn().Msg("no classifier configured")
			return
		}
		s.startRunner()
		if s.cfg.PauseWhenNotListening {
			s.engine.Resume()
		}
	} else {
		s.stopListening()
		if s.cfg.PauseWhenNotListening {
			s.engine.Suspend()
		}
	}
	s.listening = on
	s.observer.ListeningChanged(on)
	s.logger.Info().Bool("listening", on).Msg("listening changed")
}

func (s *Session) startRunner() {
	s.runnerGen++
	gen := s.runnerGen
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopRunner = cancel

	runner := classifier.NewRunner(s.cfg.Classifier, s.cfg.Interval)
	go func() {
		err := runner.Run(ctx, func(ev core.MoodEvent) {
			s.post(func() { s.onReading(gen, ev) })
		})
		if err != nil {
			s.post(func() { s.onClassifierError(gen, err) })
		}
	}()
}

// stopListening cancels the runner. Readings already queued are dropped by
// the generation check.
func (s *Session) stopListening() {
	s.runnerGen++
	if s.stopRunner != nil {
		s.stopRunner()
		s.stopRunner = nil
	}
}

func (s *Session) onReading(gen uint64, ev core.MoodEvent) {
	if gen != s.runnerGen || !s.listening {
		return
	}
	s.observer.Classified(ev.Mood)
	s.dispatcher.OnClassification(ev)
}

func (s *Session) onClassifierError(gen uint64, err error) {
	if gen != s.runnerGen {
		return
	}
	s.stopListening()
	s.listening = false
	if s.cfg.PauseWhenNotListening {
		s.engine.Suspend()
	}
	s.observer.ClassifierFailed()
	s.observer.ListeningChanged(false)
	s.logger.Error().Err(err).Msg("listening stopped")
}

// Snapshot returns the latest published state.
func (s *Session) Snapshot() core.PlaybackState {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.latest
}

// Playlist returns the playlist behind the latest snapshot.
func (s *Session) Playlist() core.Playlist {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.playlist
}

// Subscribe returns a channel that always holds the newest state. Slow
// readers miss intermediate states. cancel releases the subscription.
func (s *Session) Subscribe() (<-chan core.PlaybackState, func()) {
	ch := make(chan core.PlaybackState, 1)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.latest

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

// publish refreshes the snapshot and notifies subscribers when it changed.
func (s *Session) publish() {
	state := s.engine.Snapshot()
	state.Confidence = s.dispatcher.Confidence()
	state.Listening = s.listening

	s.subMu.Lock()
	defer s.subMu.Unlock()

	if state.Mood != s.lastMood {
		s.lastMood = state.Mood
		s.since = time.Now()
	}
	state.MoodSince = s.since
	s.latest = state
	s.playlist = s.engine.Playlist()

	hash, err := hashstructure.Hash(state, hashstructure.FormatV2, nil)
	if err == nil && hash == s.lastHash {
		return
	}
	s.lastHash = hash

	for _, ch := range s.subs {
		offer(ch, state)
	}
}

// offer replaces whatever is buffered in ch with state.
func offer(ch chan core.PlaybackState, state core.PlaybackState) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- state:
	default:
	}
}

type nopObserver struct{}

func (nopObserver) MoodSwitched(core.Mood) {}
func (nopObserver) TrackAdvanced(string) {}
func (nopObserver) PlayRequested() {}
func (nopObserver) PlayRejected() {}
func (nopObserver) StaleResolution() {}
func (nopObserver) PlayingChanged(bool) {}
func (nopObserver) VolumeChanged(float64) {}
func (nopObserver) Classified(core.Mood) {}
func (nopObserver) ClassifierFailed() {}
func (nopObserver) ListeningChanged(bool) {}
