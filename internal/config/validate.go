package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tessro/moodplay/internal/core"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Playback.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.Dispatch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dispatch: %w", err))
	}
	if err := c.Classifier.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("classifier: %w", err))
	}
	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}
	if err := c.Spotify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("spotify: %w", err))
	}
	if err := c.Sim.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sim: %w", err))
	}
	if err := c.Tail.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tail: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks PlaybackConfig for errors.
func (c *PlaybackConfig) Validate() error {
	if c.InitialMood != "" {
		if _, err := core.ParseMood(c.InitialMood); err != nil {
			return fmt.Errorf("invalid initial_mood: %w", err)
		}
	}
	if c.Volume < 0 || c.Volume > 1 {
		return errors.New("volume must be between 0 and 1")
	}
	switch c.Output {
	case "", "local", "spotify", "sim":
		// valid
	default:
		return fmt.Errorf("invalid output: %s (must be local, spotify, or sim)", c.Output)
	}
	return nil
}

// Validate checks DispatchConfig for errors.
func (c *DispatchConfig) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("min_confidence must be between 0 and 1")
	}
	if c.Hold < 0 {
		return errors.New("hold must be non-negative")
	}
	return nil
}

// Validate checks ClassifierConfig for errors.
func (c *ClassifierConfig) Validate() error {
	switch c.Kind {
	case "", "none":
	case "script":
		if c.Script == "" {
			return errors.New("script classifier requires script path")
		}
	case "http":
		if c.Endpoint == "" {
			return errors.New("http classifier requires endpoint")
		}
		if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
	default:
		return fmt.Errorf("invalid kind: %s (must be none, script, or http)", c.Kind)
	}
	if c.Interval < 0 {
		return errors.New("interval must be non-negative")
	}
	return nil
}

// Validate checks CatalogConfig for errors.
func (c *CatalogConfig) Validate() error {
	switch c.Source {
	case "", "builtin":
	case "config":
		for name := range c.Playlists {
			if _, err := core.ParseMood(name); err != nil {
				return fmt.Errorf("playlists: %w", err)
			}
		}
	case "dir":
		if c.MusicDir == "" {
			return errors.New("dir source requires music_dir")
		}
	case "spotify":
		for name := range c.SpotifyPlaylists {
			if _, err := core.ParseMood(name); err != nil {
				return fmt.Errorf("spotify_playlists: %w", err)
			}
		}
	default:
		return fmt.Errorf("invalid source: %s (must be builtin, config, dir, or spotify)", c.Source)
	}
	return nil
}

// Validate checks SpotifyConfig for errors.
func (c *SpotifyConfig) Validate() error {
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be non-negative")
	}
	return nil
}

// Validate checks SimConfig for errors.
func (c *SimConfig) Validate() error {
	if c.TrackLength < 0 {
		return errors.New("track_length must be non-negative")
	}
	if c.Latency < 0 {
		return errors.New("latency must be non-negative")
	}
	return nil
}

// Validate checks TailConfig for errors.
func (c *TailConfig) Validate() error {
	if c.Interval < 0 {
		return errors.New("interval must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
