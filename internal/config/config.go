package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	moodErrors "github.com/tessro/moodplay/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.moodplayrc, $XDG_CONFIG_HOME/moodplay/config.toml, ~/.config/moodplay/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", moodErrors.ErrConfigNotFound, path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where 'config init' writes a new file.
func DefaultPath() string {
	paths := searchPaths()
	if len(paths) == 0 {
		return ".moodplayrc"
	}
	return paths[0]
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".moodplayrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "moodplay", "config.toml"))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Playback
	if v := os.Getenv("MOODPLAY_INITIAL_MOOD"); v != "" {
		cfg.Playback.InitialMood = v
	}
	if v := os.Getenv("MOODPLAY_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Playback.Volume = f
		}
	}
	if v := os.Getenv("MOODPLAY_OUTPUT"); v != "" {
		cfg.Playback.Output = v
	}

	// Classifier
	if v := os.Getenv("MOODPLAY_CLASSIFIER"); v != "" {
		cfg.Classifier.Kind = v
	}
	if v := os.Getenv("MOODPLAY_CLASSIFIER_ENDPOINT"); v != "" {
		cfg.Classifier.Endpoint = v
	}

	// Catalog
	if v := os.Getenv("MOODPLAY_CATALOG"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("MOODPLAY_MUSIC_DIR"); v != "" {
		cfg.Catalog.MusicDir = v
	}

	// Spotify
	if v := os.Getenv("MOODPLAY_SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("MOODPLAY_SPOTIFY_DEVICE"); v != "" {
		cfg.Spotify.Device = v
	}

	// Log
	if v := os.Getenv("MOODPLAY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MOODPLAY_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	// Metrics
	if v := os.Getenv("MOODPLAY_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

// Millis converts a millisecond setting into a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
