package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tessro/moodplay/internal/core"
)

type fakeCommander struct {
	calls  []string
	seeks  []float64
	volume []float64
	moods  []core.Mood
}

func (f *fakeCommander) Snapshot() core.PlaybackState {
	return core.PlaybackState{Mood: core.MoodHappy, Confidence: 0.5, Volume: 0.7}
}
func (f *fakeCommander) Play() { f.calls = append(f.calls, "play") }
func (f *fakeCommander) Pause() { f.calls = append(f.calls, "pause") }
func (f *fakeCommander) TogglePlay() { f.calls = append(f.calls, "toggle") }
func (f *fakeCommander) Next() { f.calls = append(f.calls, "next") }
func (f *fakeCommander) Prev() { f.calls = append(f.calls, "prev") }
func (f *fakeCommander) ToggleListening() { f.calls = append(f.calls, "listen") }
func (f *fakeCommander) Seek(fraction float64) {
	f.seeks = append(f.seeks, fraction)
}
func (f *fakeCommander) SetVolume(v float64) {
	f.volume = append(f.volume, v)
}
func (f *fakeCommander) SwitchMood(m core.Mood) {
	f.moods = append(f.moods, m)
}

func TestExecuteTransport(t *testing.T) {
	f := &fakeCommander{}
	for _, line := range []string{"play", "PAUSE", "stop", "t", "next", "p", "  listen  ", ""} {
		if _, err := execute(f, line); err != nil {
			t.Fatalf("execute(%q) error = %v", line, err)
		}
	}

	want := "play,pause,pause,toggle,next,prev,listen"
	if got := strings.Join(f.calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}

func TestExecuteArguments(t *testing.T) {
	f := &fakeCommander{}

	if _, err := execute(f, "seek 25"); err != nil {
		t.Fatalf("seek error = %v", err)
	}
	if _, err := execute(f, "vol 40%"); err != nil {
		t.Fatalf("vol error = %v", err)
	}
	if _, err := execute(f, "mood Sad"); err != nil {
		t.Fatalf("mood error = %v", err)
	}

	if len(f.seeks) != 1 || f.seeks[0] != 0.25 {
		t.Errorf("seeks = %v, want [0.25]", f.seeks)
	}
	if len(f.volume) != 1 || f.volume[0] != 0.4 {
		t.Errorf("volume = %v, want [0.4]", f.volume)
	}
	if len(f.moods) != 1 || f.moods[0] != core.MoodSad {
		t.Errorf("moods = %v, want [sad]", f.moods)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []string{
		"seek",
		"seek abc",
		"vol 101",
		"mood bored",
		"dance",
	}
	for _, line := range tests {
		f := &fakeCommander{}
		if _, err := execute(f, line); err == nil {
			t.Errorf("execute(%q) expected error", line)
		}
		if len(f.calls)+len(f.seeks)+len(f.volume)+len(f.moods) != 0 {
			t.Errorf("execute(%q) reached the session", line)
		}
	}
}

func TestExecuteReplies(t *testing.T) {
	f := &fakeCommander{}

	out, err := execute(f, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "happy 50%") || !strings.Contains(out, "vol 70%") {
		t.Errorf("status = %q", out)
	}

	out, _ = execute(f, "help")
	if out != commandHelp {
		t.Errorf("help = %q", out)
	}

	if _, err := execute(f, "quit"); !errors.Is(err, errQuit) {
		t.Errorf("quit error = %v, want errQuit", err)
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0", 0, false},
		{"50", 0.5, false},
		{"100%", 1, false},
		{"", 0, true},
		{"-1", 0, true},
		{"half", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePercent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePercent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePercent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadCommands(t *testing.T) {
	f := &fakeCommander{}
	var out bytes.Buffer
	quit := false

	in := strings.NewReader("next\nbogus\nhelp\nquit\nprev\n")
	readCommands(context.Background(), in, &out, f, func() { quit = true })

	if !quit {
		t.Error("quit not called")
	}
	if len(f.calls) != 1 || f.calls[0] != "next" {
		t.Errorf("calls = %v, want [next]", f.calls)
	}
	if !strings.Contains(out.String(), "error: unknown command") {
		t.Errorf("output missing error: %q", out.String())
	}
	if !strings.Contains(out.String(), "commands:") {
		t.Errorf("output missing help: %q", out.String())
	}
}

func TestReadCommandsEOF(t *testing.T) {
	f := &fakeCommander{}
	quit := false

	readCommands(context.Background(), strings.NewReader("play\n"), &bytes.Buffer{}, f, func() { quit = true })

	if quit {
		t.Error("EOF should not quit")
	}
	if len(f.calls) != 1 {
		t.Errorf("calls = %v, want [play]", f.calls)
	}
}
