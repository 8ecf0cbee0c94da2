package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/core"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuiltin(t *testing.T) {
	table := Builtin("/srv/music")
	for _, m := range core.Moods {
		if len(table[m]) != 1 {
			t.Errorf("Builtin()[%s] has %d tracks, want 1", m, len(table[m]))
		}
	}
	if got := table[core.MoodHappy][0].Source; got != "/srv/music/Aaluma-Doluma.mp3" {
		t.Errorf("happy source = %q", got)
	}
}

func TestFromConfig(t *testing.T) {
	table, err := FromConfig(map[string]config.PlaylistConfig{
		"happy": {Tracks: []config.TrackConfig{
			{Title: "Sunny", Source: "/m/sunny.mp3"},
			{Source: "/m/good_day-remix.mp3"},
			{Title: "No source"},
		}},
	})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	happy := table[core.MoodHappy]
	if len(happy) != 2 {
		t.Fatalf("happy tracks = %v, want 2", happy)
	}
	if happy[1].Title != "good day remix" {
		t.Errorf("derived title = %q, want %q", happy[1].Title, "good day remix")
	}

	if _, err := FromConfig(map[string]config.PlaylistConfig{"meh": {}}); err == nil {
		t.Error("FromConfig() with unknown mood error = nil")
	}
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "happy", "b-song.mp3"))
	touch(t, filepath.Join(root, "happy", "a-song.wav"))
	touch(t, filepath.Join(root, "happy", "cover.jpg"))
	touch(t, filepath.Join(root, "sad", "rain.MP3"))
	touch(t, filepath.Join(root, "misc", "other.mp3"))
	touch(t, filepath.Join(root, "loose.mp3"))

	table, err := ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	happy := table[core.MoodHappy]
	if len(happy) != 2 || happy[0].Title != "a song" || happy[1].Title != "b song" {
		t.Errorf("happy = %+v, want [a song, b song]", happy)
	}
	if len(table[core.MoodSad]) != 1 {
		t.Errorf("sad = %+v, want 1 track", table[core.MoodSad])
	}
	if len(table) != 2 {
		t.Errorf("len(table) = %d, want 2", len(table))
	}

	if _, err := ScanDir(filepath.Join(root, "missing")); err == nil {
		t.Error("ScanDir() on missing dir error = nil")
	}
}

type fakeLister map[string][]core.Track

func (f fakeLister) PlaylistTracks(ctx context.Context, id string) ([]core.Track, error) {
	tracks, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return tracks, nil
}

func TestSpotify(t *testing.T) {
	lister := fakeLister{
		"p-happy": {{Title: "Pop", Source: "spotify:track:1"}},
	}

	table, failures, err := Spotify(context.Background(), lister, map[string]string{
		"happy": "p-happy",
		"sad":   "p-missing",
	})
	if err != nil {
		t.Fatalf("Spotify() error = %v", err)
	}
	if len(failures) != 1 {
		t.Errorf("failures = %v, want 1", failures)
	}
	if len(table[core.MoodHappy]) != 1 {
		t.Errorf("happy = %v, want 1 track", table[core.MoodHappy])
	}

	if _, _, err := Spotify(context.Background(), lister, map[string]string{"sad": "nope"}); err == nil {
		t.Error("Spotify() with nothing loadable error = nil")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	table, err := Load(ctx, config.CatalogConfig{Source: "builtin"}, nil, logger)
	if err != nil || len(table) != 4 {
		t.Errorf("Load(builtin) = %d moods, %v", len(table), err)
	}
	if _, err := Load(ctx, config.CatalogConfig{Source: "spotify"}, nil, logger); err == nil {
		t.Error("Load(spotify) without lister error = nil")
	}
	if _, err := Load(ctx, config.CatalogConfig{Source: "tape"}, nil, logger); err == nil {
		t.Error("Load(tape) error = nil")
	}
}

func TestWatcherReloads(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "happy", "one.mp3"))

	w := NewWatcher(zerolog.Nop(), root)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { reloads <- struct{}{} })
	}()

	// Give the watcher time to register before changing files.
	time.Sleep(100 * time.Millisecond)
	touch(t, filepath.Join(root, "happy", "two.mp3"))

	select {
	case <-reloads:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after adding a track")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	home := t.TempDir()
	rc := filepath.Join(home, ".moodplayrc")
	touch(t, rc)

	w := NewWatcher(zerolog.Nop(), rc)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { reloads <- struct{}{} })
	}()

	time.Sleep(100 * time.Millisecond)
	touch(t, filepath.Join(home, ".bash_history"))

	select {
	case <-reloads:
		t.Fatal("reloaded after an unrelated file changed")
	case <-time.After(200 * time.Millisecond):
	}

	touch(t, rc)

	select {
	case <-reloads:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after the watched file changed")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/music/Aaluma-Doluma.mp3", "Aaluma Doluma"},
		{"file:///x/kutti_story  mix.wav", "kutti story mix"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := TitleFromPath(tt.in); got != tt.want {
			t.Errorf("TitleFromPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
