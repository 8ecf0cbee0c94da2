package session

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/classifier"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/media/mediatest"
	"github.com/tessro/moodplay/internal/selector"
)

var testTable = selector.Table{
	core.MoodHappy:   {{Title: "Sunny", Source: "happy.mp3"}},
	core.MoodRelaxed: {{Title: "Calm", Source: "calm.mp3"}, {Title: "Still", Source: "still.mp3"}},
}

type countingObserver struct {
	nopObserver
	classified atomic.Int32
	failures   atomic.Int32
}

func (o *countingObserver) Classified(core.Mood) { o.classified.Add(1) }
func (o *countingObserver) ClassifierFailed() { o.failures.Add(1) }

func start(t *testing.T, cfg Config) (*Session, *mediatest.Fake) {
	t.Helper()
	fake, _ := cfg.Media.(*mediatest.Fake)
	if fake == nil {
		fake = mediatest.New().AutoResolve(nil)
		cfg.Media = fake
	}
	if cfg.Selector == nil {
		cfg.Selector = selector.New(testTable)
	}
	cfg.Logger = zerolog.Nop()

	s := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run() did not return")
		}
	})
	return s, fake
}

func waitFor(t *testing.T, s *Session, desc string, pred func(core.PlaybackState) bool) core.PlaybackState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := s.Snapshot(); pred(snap) {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s; last state %+v", desc, s.Snapshot())
	return core.PlaybackState{}
}

func waitUntil(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestInitialSnapshot(t *testing.T) {
	s := New(Config{
		Media:    mediatest.New(),
		Selector: selector.New(testTable),
		Volume:   0.7,
		Logger:   zerolog.Nop(),
	})

	snap := s.Snapshot()
	if snap.Mood != core.MoodRelaxed {
		t.Errorf("Mood = %s, want relaxed", snap.Mood)
	}
	if snap.Status != core.StatusLoaded || snap.Track == nil || snap.Track.Title != "Calm" {
		t.Errorf("snapshot = %+v, want first relaxed track loaded", snap)
	}
	if snap.IsPlaying || snap.Listening {
		t.Error("new session should be silent and not listening")
	}
	if s.ID() == "" {
		t.Error("ID() is empty")
	}
	if pl := s.Playlist(); pl.Len() != 2 || pl.Mood != core.MoodRelaxed {
		t.Errorf("Playlist() = %+v, want the two relaxed tracks", pl)
	}
}

func TestPlayPause(t *testing.T) {
	s, _ := start(t, Config{})

	s.Play()
	waitFor(t, s, "playing", func(p core.PlaybackState) bool { return p.IsPlaying })

	s.Pause()
	waitFor(t, s, "paused", func(p core.PlaybackState) bool { return p.Status == core.StatusPaused })

	s.TogglePlay()
	waitFor(t, s, "playing again", func(p core.PlaybackState) bool { return p.IsPlaying })
}

func TestNextPrev(t *testing.T) {
	s, _ := start(t, Config{})

	s.Next()
	snap := waitFor(t, s, "second track", func(p core.PlaybackState) bool { return p.TrackIndex == 1 && p.IsPlaying })
	if snap.Track.Title != "Still" {
		t.Errorf("Track = %q, want Still", snap.Track.Title)
	}

	s.Prev()
	waitFor(t, s, "first track", func(p core.PlaybackState) bool { return p.TrackIndex == 0 })
}

func TestClassifierSwitchesMood(t *testing.T) {
	happy := classifier.Func(func(ctx context.Context) (core.MoodEvent, error) {
		return core.MoodEvent{Mood: core.MoodHappy, Confidence: 0.83, Timestamp: time.Now()}, nil
	})
	s, fake := start(t, Config{Classifier: happy, Interval: 5 * time.Millisecond, Listen: true})

	snap := waitFor(t, s, "happy mood", func(p core.PlaybackState) bool { return p.Mood == core.MoodHappy })
	if !snap.Listening {
		t.Error("Listening = false while the classifier runs")
	}
	if snap.Confidence != 0.83 {
		t.Errorf("Confidence = %v, want 0.83", snap.Confidence)
	}
	if got := fake.LastLoad().Title; got != "Sunny" {
		t.Errorf("loaded %q, want Sunny", got)
	}
}

func TestClassifierFailureStopsListening(t *testing.T) {
	obs := &countingObserver{}
	broken := classifier.Func(func(ctx context.Context) (core.MoodEvent, error) {
		return core.MoodEvent{}, errors.New("camera unplugged")
	})
	s, _ := start(t, Config{Classifier: broken, Interval: 5 * time.Millisecond, Listen: true, Observer: obs})

	waitUntil(t, "classifier failure", func() bool { return obs.failures.Load() == 1 })
	waitFor(t, s, "listening off", func(p core.PlaybackState) bool { return !p.Listening })

	// Playback keeps working without the classifier.
	s.Play()
	waitFor(t, s, "playing", func(p core.PlaybackState) bool { return p.IsPlaying })
}

func TestReadingsFromStoppedRunnerAreDropped(t *testing.T) {
	s := New(Config{
		Media:    mediatest.New(),
		Selector: selector.New(testTable),
		Logger:   zerolog.Nop(),
	})
	s.listening = true
	s.runnerGen = 2

	happy := core.MoodEvent{Mood: core.MoodHappy, Confidence: 0.9}
	s.onReading(1, happy)
	if s.engine.Mood() != core.MoodRelaxed {
		t.Fatal("stale reading switched the mood")
	}

	s.onReading(2, happy)
	if s.engine.Mood() != core.MoodHappy {
		t.Error("current reading did not switch the mood")
	}

	s.listening = false
	s.onReading(2, core.MoodEvent{Mood: core.MoodRelaxed})
	if s.engine.Mood() != core.MoodHappy {
		t.Error("reading while not listening switched the mood")
	}
}

func TestListeningWithoutClassifier(t *testing.T) {
	s, _ := start(t, Config{})

	s.ToggleListening()
	s.Play()
	snap := waitFor(t, s, "playing", func(p core.PlaybackState) bool { return p.IsPlaying })
	if snap.Listening {
		t.Error("Listening = true without a classifier")
	}
}

func TestPauseWhenNotListening(t *testing.T) {
	same := classifier.Func(func(ctx context.Context) (core.MoodEvent, error) {
		return core.MoodEvent{Mood: core.MoodRelaxed, Confidence: 0.5}, nil
	})
	s, _ := start(t, Config{
		Classifier:            same,
		Interval:              5 * time.Millisecond,
		Listen:                true,
		PauseWhenNotListening: true,
	})

	s.Play()
	waitFor(t, s, "playing", func(p core.PlaybackState) bool { return p.IsPlaying && p.Listening })

	s.SetListening(false)
	waitFor(t, s, "paused", func(p core.PlaybackState) bool { return p.Status == core.StatusPaused && !p.Listening })

	s.SetListening(true)
	waitFor(t, s, "resumed", func(p core.PlaybackState) bool { return p.IsPlaying && p.Listening })
}

func TestPauseWhenNotListeningKeepsUserPause(t *testing.T) {
	same := classifier.Func(func(ctx context.Context) (core.MoodEvent, error) {
		return core.MoodEvent{Mood: core.MoodRelaxed, Confidence: 0.5}, nil
	})
	s, fake := start(t, Config{
		Classifier:            same,
		Interval:              5 * time.Millisecond,
		Listen:                true,
		PauseWhenNotListening: true,
	})

	s.Play()
	waitFor(t, s, "playing", func(p core.PlaybackState) bool { return p.IsPlaying })
	s.SetListening(false)
	s.Pause()
	s.SetListening(true)
	waitFor(t, s, "listening", func(p core.PlaybackState) bool { return p.Listening })

	if snap := s.Snapshot(); snap.IsPlaying || snap.Pending {
		t.Errorf("playback resumed after an explicit pause: %+v", snap)
	}
	if fake.Requests() != 1 {
		t.Errorf("play requests = %d, want 1", fake.Requests())
	}
}

func TestClassifierFailurePausesWhenNotListening(t *testing.T) {
	var broken atomic.Bool
	camera := classifier.Func(func(ctx context.Context) (core.MoodEvent, error) {
		if broken.Load() {
			return core.MoodEvent{}, errors.New("camera unplugged")
		}
		return core.MoodEvent{Mood: core.MoodRelaxed, Confidence: 0.5}, nil
	})
	s, _ := start(t, Config{
		Classifier:            camera,
		Interval:              5 * time.Millisecond,
		Listen:                true,
		PauseWhenNotListening: true,
	})

	s.Play()
	waitFor(t, s, "playing", func(p core.PlaybackState) bool { return p.IsPlaying && p.Listening })

	broken.Store(true)
	waitFor(t, s, "paused after failure", func(p core.PlaybackState) bool {
		return p.Status == core.StatusPaused && !p.Listening
	})
}

func TestSeekByAndAdjustVolume(t *testing.T) {
	s, fake := start(t, Config{Volume: 0.7})

	fake.Events().EmitMetadata(100 * time.Second)
	waitFor(t, s, "duration", func(p core.PlaybackState) bool { return p.Duration == 100*time.Second })

	s.SeekBy(10 * time.Second)
	waitFor(t, s, "seek", func(p core.PlaybackState) bool { return p.Position == 10*time.Second })
	s.SeekBy(-time.Minute)
	waitFor(t, s, "seek clamped to start", func(p core.PlaybackState) bool { return p.Position == 0 })

	s.AdjustVolume(-0.2)
	waitFor(t, s, "volume", func(p core.PlaybackState) bool { return math.Abs(p.Volume-0.5) < 1e-9 })
	s.AdjustVolume(5)
	waitFor(t, s, "volume clamped", func(p core.PlaybackState) bool { return p.Volume == 1 })
	s.SetVolume(0.25)
	waitFor(t, s, "volume set", func(p core.PlaybackState) bool { return p.Volume == 0.25 })

	s.Seek(0.5)
	waitFor(t, s, "seek fraction", func(p core.PlaybackState) bool { return p.Position == 50*time.Second })
}

func TestManualSwitchMood(t *testing.T) {
	s, _ := start(t, Config{})

	s.SwitchMood(core.MoodHappy)
	snap := waitFor(t, s, "happy", func(p core.PlaybackState) bool { return p.Mood == core.MoodHappy })
	if snap.MoodSince.IsZero() {
		t.Error("MoodSince not set")
	}

	// Angry has no playlist and falls back to relaxed tracks.
	s.SwitchMood(core.MoodAngry)
	snap = waitFor(t, s, "angry", func(p core.PlaybackState) bool { return p.Mood == core.MoodAngry })
	if snap.Track == nil || snap.Track.Title != "Calm" {
		t.Errorf("Track = %+v, want relaxed fallback", snap.Track)
	}
}

func TestReloadFromIdle(t *testing.T) {
	s, _ := start(t, Config{Selector: selector.New(nil)})

	waitFor(t, s, "idle", func(p core.PlaybackState) bool { return p.Status == core.StatusIdle })

	s.Reload(selector.New(testTable))
	snap := waitFor(t, s, "loaded", func(p core.PlaybackState) bool { return p.Status == core.StatusLoaded })
	if snap.Track == nil || snap.Track.Title != "Calm" {
		t.Errorf("Track = %+v, want Calm", snap.Track)
	}
}

func TestSubscribe(t *testing.T) {
	s, _ := start(t, Config{})

	ch, cancel := s.Subscribe()
	first := <-ch
	if first.Mood != core.MoodRelaxed {
		t.Errorf("first state mood = %s, want relaxed", first.Mood)
	}

	s.SetVolume(0.3)
	deadline := time.After(2 * time.Second)
	for got := false; !got; {
		select {
		case st := <-ch:
			got = st.Volume == 0.3
		case <-deadline:
			t.Fatal("no update after SetVolume")
		}
	}

	cancel()
	cancel()
	for range ch {
	}
}

func TestRunShutdown(t *testing.T) {
	fake := mediatest.New()
	s := New(Config{Media: fake, Selector: selector.New(testTable), Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	ch, _ := s.Subscribe()
	<-ch

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	<-s.Done()

	if got := fake.Closes(); got != 1 {
		t.Errorf("Closes() = %d, want 1", got)
	}
	for range ch {
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	if s.Snapshot().Status != core.StatusIdle {
		t.Errorf("Status after shutdown = %s, want idle", s.Snapshot().Status)
	}
}
