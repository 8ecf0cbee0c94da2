package catalog

import (
	"context"
	"fmt"

	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/selector"
)

// TrackLister fetches the tracks of a remote playlist.
type TrackLister interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]core.Track, error)
}

// Spotify builds a table from one remote playlist per mood. A playlist that
// fails to load is skipped so the selector can fall back; the error is
// returned only when nothing loaded.
func Spotify(ctx context.Context, lister TrackLister, ids map[string]string) (selector.Table, []error, error) {
	table := make(selector.Table, len(ids))
	var failures []error

	for name, id := range ids {
		mood, err := core.ParseMood(name)
		if err != nil {
			return nil, nil, err
		}
		tracks, err := lister.PlaylistTracks(ctx, id)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s playlist %s: %w", mood, id, err))
			continue
		}
		table[mood] = tracks
	}

	if len(table) == 0 && len(failures) > 0 {
		return nil, failures, fmt.Errorf("no spotify playlists could be loaded: %w", failures[0])
	}
	return table, failures, nil
}
