package config

// Config is the root configuration structure.
type Config struct {
	Playback   PlaybackConfig   `toml:"playback" json:"playback"`
	Dispatch   DispatchConfig   `toml:"dispatch" json:"dispatch"`
	Classifier ClassifierConfig `toml:"classifier" json:"classifier"`
	Catalog    CatalogConfig    `toml:"catalog" json:"catalog"`
	Spotify    SpotifyConfig    `toml:"spotify" json:"spotify"`
	Sim        SimConfig        `toml:"sim" json:"sim"`
	Tail       TailConfig       `toml:"tail" json:"tail"`
	TUI        TUIConfig        `toml:"tui" json:"tui"`
	Log        LogConfig        `toml:"log" json:"log"`
	Metrics    MetricsConfig    `toml:"metrics" json:"metrics"`
}

// PlaybackConfig holds engine settings.
type PlaybackConfig struct {
	InitialMood string  `toml:"initial_mood" json:"initial_mood"`
	Volume      float64 `toml:"volume" json:"volume"`
	Output      string  `toml:"output" json:"output"` // local, spotify, sim

	// PauseWhenNotListening holds playback while listening is off and resumes it
	// when listening comes back.
	PauseWhenNotListening bool `toml:"pause_when_not_listening" json:"pause_when_not_listening"`
}

// DispatchConfig holds the optional mood hysteresis. Zero values keep the
// immediate-switch behaviour.
type DispatchConfig struct {
	MinConfidence float64 `toml:"min_confidence" json:"min_confidence"`
	Hold          int     `toml:"hold" json:"hold"`
}

// ClassifierConfig holds mood classifier settings.
type ClassifierConfig struct {
	Kind     string `toml:"kind" json:"kind"` // none, script, http
	Interval int    `toml:"interval" json:"interval"`
	Endpoint string `toml:"endpoint" json:"endpoint"`
	Script   string `toml:"script" json:"script"`
	Loop     bool   `toml:"loop" json:"loop"`
	Listen   *bool  `toml:"listen" json:"listen"`
}

// TrackConfig is one playlist entry.
type TrackConfig struct {
	Title  string `toml:"title" json:"title"`
	Source string `toml:"source" json:"source"`
}

// PlaylistConfig is the track list for one mood.
type PlaylistConfig struct {
	Tracks []TrackConfig `toml:"tracks" json:"tracks"`
}

// CatalogConfig selects where playlists come from.
type CatalogConfig struct {
	Source           string                    `toml:"source" json:"source"` // builtin, config, dir, spotify
	MusicDir         string                    `toml:"music_dir" json:"music_dir"`
	Watch            bool                      `toml:"watch" json:"watch"`
	Playlists        map[string]PlaylistConfig `toml:"playlists" json:"playlists"`
	SpotifyPlaylists map[string]string         `toml:"spotify_playlists" json:"spotify_playlists"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" json:"client_id"`
	Device       string `toml:"device" json:"device"`
	PollInterval int    `toml:"poll_interval" json:"poll_interval"`
	TokenFile    string `toml:"token_file" json:"token_file"`
}

// SimConfig holds settings for the simulated output.
type SimConfig struct {
	TrackLength int  `toml:"track_length" json:"track_length"`
	Latency     int  `toml:"latency" json:"latency"`
	RejectPlay  bool `toml:"reject_play" json:"reject_play"`
}

// TailConfig holds settings for event output in run mode.
type TailConfig struct {
	Interval  int    `toml:"interval" json:"interval"`
	Emoji     *bool  `toml:"emoji" json:"emoji"`
	Timestamp bool   `toml:"timestamp" json:"timestamp"`
	Format    string `toml:"format" json:"format"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// MetricsConfig holds the Prometheus listener address.
type MetricsConfig struct {
	Addr string `toml:"addr" json:"addr"`
}

// ListenOnStart reports whether the classifier starts listening immediately.
func (c *ClassifierConfig) ListenOnStart() bool {
	return c.Listen == nil || *c.Listen
}

// EmojiEnabled reports whether tail output should include emoji.
func (c *TailConfig) EmojiEnabled() bool {
	return c.Emoji == nil || *c.Emoji
}
