package player

import (
	"context"

	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/spotify/client"
)

// PlaylistReader reads playlist contents.
type PlaylistReader interface {
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]client.Track, error)
}

// Catalog adapts the Web API to catalog.TrackLister.
type Catalog struct {
	api PlaylistReader
}

// NewCatalog wraps api.
func NewCatalog(api PlaylistReader) *Catalog {
	return &Catalog{api: api}
}

// PlaylistTracks returns the playlist as playable tracks.
func (c *Catalog) PlaylistTracks(ctx context.Context, playlistID string) ([]core.Track, error) {
	tracks, err := c.api.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	out := make([]core.Track, len(tracks))
	for i := range tracks {
		out[i] = convertTrack(&tracks[i])
	}
	return out, nil
}

// convertTrack converts a Spotify track to a core track.
func convertTrack(t *client.Track) core.Track {
	return core.Track{
		Title:  t.DisplayTitle(),
		Source: t.URI,
	}
}
