package cli

import (
	"testing"

	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/selector"
)

func TestResolvePlaylists(t *testing.T) {
	sel := selector.New(selector.Table{
		core.MoodHappy:   {{Title: "Up", Source: "up.mp3"}},
		core.MoodRelaxed: {{Title: "Calm", Source: "calm.mp3"}, {Title: "Still", Source: "still.mp3"}},
	})

	rows := resolvePlaylists(sel)
	if len(rows) != len(core.Moods) {
		t.Fatalf("rows = %d, want %d", len(rows), len(core.Moods))
	}

	byMood := make(map[core.Mood]playlistRow)
	for _, r := range rows {
		byMood[r.Mood] = r
	}

	if r := byMood[core.MoodHappy]; r.Fallback || len(r.Tracks) != 1 {
		t.Errorf("happy = %+v, want own playlist", r)
	}
	if r := byMood[core.MoodSad]; !r.Fallback || r.Resolved != core.MoodRelaxed || len(r.Tracks) != 2 {
		t.Errorf("sad = %+v, want relaxed fallback", r)
	}
	if r := byMood[core.MoodRelaxed]; r.Fallback {
		t.Errorf("relaxed = %+v, should not be a fallback", r)
	}
}

func TestFallbackNote(t *testing.T) {
	tests := []struct {
		name string
		row  playlistRow
		want string
	}{
		{"own", playlistRow{Mood: core.MoodHappy, Resolved: core.MoodHappy, Tracks: []core.Track{{Title: "a"}}}, ""},
		{"fallback", playlistRow{Mood: core.MoodSad, Resolved: core.MoodRelaxed, Fallback: true, Tracks: []core.Track{{Title: "a"}}}, " (fallback: relaxed)"},
		{"empty", playlistRow{Mood: core.MoodAngry}, " (nothing to play)"},
	}
	for _, tt := range tests {
		if got := fallbackNote(tt.row); got != tt.want {
			t.Errorf("%s: fallbackNote() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
