package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a reload function when any watched path changes.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   zerolog.Logger
}

// NewWatcher watches paths. Directories are watched along with their
// immediate subdirectories, which is how mood folders are laid out.
func NewWatcher(logger zerolog.Logger, paths ...string) *Watcher {
	return &Watcher{
		paths:    paths,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// SetDebounce overrides the debounce window.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run blocks until ctx is done, calling reload after changes settle.
func (w *Watcher) Run(ctx context.Context, reload func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	t := tracked{dirs: map[string]bool{}, files: map[string]bool{}}
	for _, p := range w.paths {
		if err := t.add(fsw, p); err != nil {
			return err
		}
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) || !t.covers(event.Name) {
				continue
			}
			// New mood folders need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if fsw.Add(event.Name) == nil {
						t.dirs[filepath.Clean(event.Name)] = true
					}
				}
			}
			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("catalog changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("catalog watch error")
		}
	}
}

// tracked records what the watcher cares about. A plain file is watched
// through its parent directory, so siblings of that file are filtered out.
type tracked struct {
	dirs  map[string]bool
	files map[string]bool
}

func (t tracked) covers(name string) bool {
	name = filepath.Clean(name)
	return t.files[name] || t.dirs[name] || t.dirs[filepath.Dir(name)]
}

func (t tracked) add(fsw *fsnotify.Watcher, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", p, err)
	}
	p = filepath.Clean(p)
	if !info.IsDir() {
		// Watch the parent so editors that replace the file are seen.
		t.files[p] = true
		return fsw.Add(filepath.Dir(p))
	}
	if err := fsw.Add(p); err != nil {
		return fmt.Errorf("failed to watch %s: %w", p, err)
	}
	t.dirs[p] = true
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			sub := filepath.Join(p, e.Name())
			if fsw.Add(sub) == nil {
				t.dirs[sub] = true
			}
		}
	}
	return nil
}
