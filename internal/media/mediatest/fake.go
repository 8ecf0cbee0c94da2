// Package mediatest provides a scripted core.Media for tests.
package mediatest

import (
	"sync"
	"time"

	"github.com/tessro/moodplay/internal/core"
)

// Fake records every call and holds play requests until the test resolves them.
type Fake struct {
	mu        sync.Mutex
	loads     []core.Track
	current   *core.Track
	events    core.MediaEvents
	resolvers []func(error)
	resolved  []bool
	seeks     []time.Duration
	volume    float64
	pauses    int
	unloads   int
	closes    int

	// LoadErr is returned from Load when set. A failed load leaves nothing
	// loaded, as with the real outputs once the engine has unloaded.
	LoadErr error

	auto    bool
	autoErr error
}

var _ core.Media = (*Fake)(nil)

// New creates a fake that holds play requests.
func New() *Fake {
	return &Fake{}
}

// AutoResolve makes every play request resolve with err from a new goroutine,
// the way a real output completes asynchronously.
func (f *Fake) AutoResolve(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auto = true
	f.autoErr = err
	return f
}

func (f *Fake) Load(track core.Track, events core.MediaEvents) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, track)
	if f.LoadErr != nil {
		f.current = nil
		f.events = core.MediaEvents{}
		return f.LoadErr
	}
	f.current = &track
	f.events = events
	return nil
}

func (f *Fake) Play(resolve func(error)) {
	f.mu.Lock()
	f.resolvers = append(f.resolvers, resolve)
	f.resolved = append(f.resolved, false)
	i := len(f.resolvers) - 1
	auto, err := f.auto, f.autoErr
	f.mu.Unlock()

	if auto {
		go f.Resolve(i, err)
	}
}

func (f *Fake) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *Fake) Seek(position time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, position)
}

func (f *Fake) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
}

func (f *Fake) Unload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
	f.current = nil
	f.events = core.MediaEvents{}
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

// Resolve settles the i-th play request. Each request settles at most once.
func (f *Fake) Resolve(i int, err error) {
	f.mu.Lock()
	if i < 0 || i >= len(f.resolvers) || f.resolved[i] {
		f.mu.Unlock()
		return
	}
	f.resolved[i] = true
	resolve := f.resolvers[i]
	f.mu.Unlock()

	resolve(err)
}

// ResolveLast settles the most recent play request.
func (f *Fake) ResolveLast(err error) {
	f.Resolve(f.Requests()-1, err)
}

// Requests returns how many play requests were made.
func (f *Fake) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resolvers)
}

// Events returns the callbacks registered by the latest Load.
func (f *Fake) Events() core.MediaEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

// Loads returns every track loaded so far.
func (f *Fake) Loads() []core.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Track(nil), f.loads...)
}

// LastLoad returns the most recently loaded track.
func (f *Fake) LastLoad() core.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return core.Track{}
	}
	return f.loads[len(f.loads)-1]
}

// Current returns the track the fake holds, if any.
func (f *Fake) Current() (core.Track, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return core.Track{}, false
	}
	return *f.current, true
}

// Seeks returns every seek target.
func (f *Fake) Seeks() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.seeks...)
}

// Volume returns the last applied volume.
func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

// Pauses returns how many times Pause was called.
func (f *Fake) Pauses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

// Unloads returns how many times Unload was called.
func (f *Fake) Unloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unloads
}

// Closes returns how many times Close was called.
func (f *Fake) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}
