package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			InitialMood: "relaxed",
			Volume:      0.7,
			Output:      "local",
		},
		Classifier: ClassifierConfig{
			Kind:     "none",
			Interval: 900,
		},
		Catalog: CatalogConfig{
			Source: "builtin",
			SpotifyPlaylists: map[string]string{
				"happy":   "37i9dQZF1DXdPec7aLTmlC",
				"sad":     "37i9dQZF1DX7qK8ma5wgG1",
				"angry":   "37i9dQZF1DWY6tYEFs22tT",
				"relaxed": "37i9dQZF1DX4WYpdgoIcn6",
			},
		},
		Spotify: SpotifyConfig{
			PollInterval: 1000,
		},
		Sim: SimConfig{
			TrackLength: 180,
			Latency:     150,
		},
		Tail: TailConfig{
			Interval: 250,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 250,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
// Volume is only defaulted when unset; an explicit 0 cannot be told
// apart, so muting is done at runtime.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Playback
	if c.Playback.InitialMood == "" {
		c.Playback.InitialMood = d.Playback.InitialMood
	}
	if c.Playback.Volume == 0 {
		c.Playback.Volume = d.Playback.Volume
	}
	if c.Playback.Output == "" {
		c.Playback.Output = d.Playback.Output
	}

	// Classifier
	if c.Classifier.Kind == "" {
		c.Classifier.Kind = d.Classifier.Kind
	}
	if c.Classifier.Interval == 0 {
		c.Classifier.Interval = d.Classifier.Interval
	}

	// Catalog
	if c.Catalog.Source == "" {
		c.Catalog.Source = d.Catalog.Source
	}
	if len(c.Catalog.SpotifyPlaylists) == 0 {
		c.Catalog.SpotifyPlaylists = d.Catalog.SpotifyPlaylists
	}

	// Spotify
	if c.Spotify.PollInterval == 0 {
		c.Spotify.PollInterval = d.Spotify.PollInterval
	}

	// Sim
	if c.Sim.TrackLength == 0 {
		c.Sim.TrackLength = d.Sim.TrackLength
	}
	if c.Sim.Latency == 0 {
		c.Sim.Latency = d.Sim.Latency
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
