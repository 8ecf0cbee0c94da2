package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// playlistPageSize is the largest page the playlist items endpoint serves.
const playlistPageSize = 100

// GetCurrentUser returns the current user's profile.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDevices returns the user's available playback devices.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var resp DevicesResponse
	if err := c.Get(ctx, "/me/player/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// GetPlaybackState returns the current playback state, or nil when nothing
// is playing on any device.
func (c *Client) GetPlaybackState(ctx context.Context) (*PlaybackState, error) {
	var state *PlaybackState
	if err := c.Get(ctx, "/me/player", &state); err != nil {
		return nil, err
	}
	return state, nil
}

// GetPlaylistTracks returns every track of a playlist, following pagination.
// Local files and episodes are skipped.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("playlist id cannot be empty")
	}

	next := BuildURL("/playlists/"+url.PathEscape(playlistID)+"/tracks", map[string]string{
		"limit":  strconv.Itoa(playlistPageSize),
		"fields": "items(is_local,track(id,name,uri,type,duration_ms,artists(name))),next,total",
	})

	var tracks []Track
	for next != "" {
		var page PlaylistTracksPage
		if err := c.Get(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if item.IsLocal || item.Track == nil || item.Track.URI == "" {
				continue
			}
			if item.Track.Type != "" && item.Track.Type != "track" {
				continue
			}
			tracks = append(tracks, *item.Track)
		}
		next = page.Next
	}
	return tracks, nil
}
