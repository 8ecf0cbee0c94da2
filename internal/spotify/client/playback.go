package client

import (
	"context"
	"strconv"
)

// PlayOptions is the body of a start request. moodplay always sends a
// single track URI so the device never continues into unrelated context.
type PlayOptions struct {
	URIs       []string `json:"uris,omitempty"`
	PositionMS int      `json:"position_ms,omitempty"`
}

// playerPath builds a /me/player endpoint targeting deviceID, or the active
// device when deviceID is empty.
func playerPath(endpoint, deviceID string, params map[string]string) string {
	if params == nil {
		params = make(map[string]string, 1)
	}
	if deviceID != "" {
		params["device_id"] = deviceID
	}
	return BuildURL("/me/player/"+endpoint, params)
}

// Play starts opts on the device. A nil opts resumes whatever is loaded.
func (c *Client) Play(ctx context.Context, deviceID string, opts *PlayOptions) error {
	// The endpoint rejects resume requests without a body.
	if opts == nil {
		opts = &PlayOptions{}
	}
	return c.Put(ctx, playerPath("play", deviceID, nil), opts, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	return c.Put(ctx, playerPath("pause", deviceID, nil), nil, nil)
}

// Seek moves the current track to positionMs.
func (c *Client) Seek(ctx context.Context, positionMs int, deviceID string) error {
	return c.Put(ctx, playerPath("seek", deviceID, map[string]string{
		"position_ms": strconv.Itoa(positionMs),
	}), nil, nil)
}

// SetVolume sets the device volume in percent.
func (c *Client) SetVolume(ctx context.Context, percent int, deviceID string) error {
	return c.Put(ctx, playerPath("volume", deviceID, map[string]string{
		"volume_percent": strconv.Itoa(percent),
	}), nil, nil)
}
