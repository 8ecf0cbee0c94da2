package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/core"
)

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    interface{}
		wantErr bool
	}{
		{"classifier.interval", "500", int64(500), false},
		{"dispatch.hold", "x", nil, true},
		{"playback.volume", "0.4", 0.4, false},
		{"dispatch.min_confidence", "high", nil, true},
		{"catalog.watch", "yes", true, false},
		{"tail.emoji", "off", false, false},
		{"sim.reject_play", "maybe", nil, true},
		{"playback.output", "sim", "sim", false},
	}
	for _, tt := range tests {
		got, err := parseConfigValue(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseConfigValue(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseConfigValue(%q, %q) = %#v, want %#v", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestSetConfigValue(t *testing.T) {
	raw := map[string]interface{}{
		"playback": map[string]interface{}{"output": "local"},
	}

	if err := setConfigValue(raw, "playback.output", "sim"); err != nil {
		t.Fatalf("setConfigValue() error = %v", err)
	}
	if err := setConfigValue(raw, "tail.timestamp", "true"); err != nil {
		t.Fatalf("setConfigValue() error = %v", err)
	}

	if got := raw["playback"].(map[string]interface{})["output"]; got != "sim" {
		t.Errorf("playback.output = %v, want sim", got)
	}
	if got := raw["tail"].(map[string]interface{})["timestamp"]; got != true {
		t.Errorf("tail.timestamp = %v, want true", got)
	}
}

func TestSetConfigValueRejects(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"volume", "0.5"},
		{"playback.output", "cassette"},
		{"playback.volume", "3"},
		{"playback.initial_mood", "bored"},
		{"playback.shuffle", "true"},
	}
	for _, tt := range tests {
		raw := map[string]interface{}{}
		if err := setConfigValue(raw, tt.key, tt.value); err == nil {
			t.Errorf("setConfigValue(%q, %q) expected error", tt.key, tt.value)
		}
	}
}

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := writeConfigFile(path, config.Default()); err != nil {
		t.Fatalf("writeConfigFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# moodplay configuration\n# Spotify scopes: user-read-playback-state") {
		t.Errorf("header = %q", strings.SplitN(string(data), "\n", 3)[:2])
	}

	var got config.Config
	if _, err := toml.Decode(string(data), &got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got.Playback.InitialMood != string(core.MoodRelaxed) || got.Playback.Volume != 0.7 {
		t.Errorf("playback = %+v", got.Playback)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
