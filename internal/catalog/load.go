package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/selector"
)

// Load builds the table for the configured source. lister is only needed
// for the spotify source.
func Load(ctx context.Context, cfg config.CatalogConfig, lister TrackLister, logger zerolog.Logger) (selector.Table, error) {
	switch cfg.Source {
	case "", "builtin":
		return Builtin(cfg.MusicDir), nil
	case "config":
		return FromConfig(cfg.Playlists)
	case "dir":
		return ScanDir(cfg.MusicDir)
	case "spotify":
		if lister == nil {
			return nil, errors.New("spotify catalog requires a spotify client")
		}
		table, failures, err := Spotify(ctx, lister, cfg.SpotifyPlaylists)
		for _, f := range failures {
			logger.Warn().Err(f).Msg("skipping playlist")
		}
		return table, err
	default:
		return nil, fmt.Errorf("unknown catalog source: %s", cfg.Source)
	}
}

// WatchPaths returns the files or directories whose changes should trigger
// a reload, or nil when the source is not file backed.
func WatchPaths(cfg config.CatalogConfig, configFile string) []string {
	switch cfg.Source {
	case "dir":
		return []string{cfg.MusicDir}
	case "config":
		if configFile != "" {
			return []string{configFile}
		}
	}
	return nil
}
