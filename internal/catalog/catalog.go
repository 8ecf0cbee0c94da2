// Package catalog builds selector tables from the configured playlist source.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/selector"
)

// Builtin returns the stock one-track-per-mood table, resolved against musicDir.
func Builtin(musicDir string) selector.Table {
	if musicDir == "" {
		musicDir = "music"
	}
	entry := func(title, file string) []core.Track {
		return []core.Track{{Title: title, Source: filepath.Join(musicDir, file)}}
	}
	return selector.Table{
		core.MoodHappy:   entry("Aaluma Doluma", "Aaluma-Doluma.mp3"),
		core.MoodSad:     entry("Oorai Therinjikiten", "Oorai Therinjukitten.mp3"),
		core.MoodAngry:   entry("Fire Up", "Neruppu-Da.mp3"),
		core.MoodRelaxed: entry("Kutty Story", "Kutti-Story-MassTamilan.io.mp3"),
	}
}

// FromConfig converts [catalog.playlists] tables. Tracks without a source are
// dropped; a missing title falls back to the file name.
func FromConfig(playlists map[string]config.PlaylistConfig) (selector.Table, error) {
	table := make(selector.Table, len(playlists))
	for name, pl := range playlists {
		mood, err := core.ParseMood(name)
		if err != nil {
			return nil, err
		}
		for _, t := range pl.Tracks {
			if t.Source == "" {
				continue
			}
			title := t.Title
			if title == "" {
				title = TitleFromPath(t.Source)
			}
			table[mood] = append(table[mood], core.Track{Title: title, Source: t.Source})
		}
	}
	return table, nil
}

// Extensions lists the audio files ScanDir picks up.
var Extensions = []string{".mp3", ".wav"}

// ScanDir builds a table from root/<mood>/ directories. Files are ordered by
// name; directories that are not mood names are ignored.
func ScanDir(root string) (selector.Table, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	table := make(selector.Table)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		mood, err := core.ParseMood(entry.Name())
		if err != nil {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}

		var names []string
		for _, f := range files {
			if f.IsDir() || !isAudio(f.Name()) {
				continue
			}
			names = append(names, f.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			table[mood] = append(table[mood], core.Track{
				Title:  TitleFromPath(name),
				Source: filepath.Join(dir, name),
			})
		}
	}
	return table, nil
}

func isAudio(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TitleFromPath derives a display title from a file name.
func TitleFromPath(p string) string {
	base := filepath.Base(strings.TrimPrefix(p, "file://"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// Summary returns the track count for every mood, in display order.
func Summary(t selector.Table) map[core.Mood]int {
	out := make(map[core.Mood]int, len(core.Moods))
	for _, m := range core.Moods {
		out[m] = len(t[m])
	}
	return out
}
