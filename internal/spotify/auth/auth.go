// Package auth holds the Spotify OAuth settings and the persisted token.
//
// Tokens are obtained out of band; this package only loads, refreshes and
// stores them.
package auth

import (
	"golang.org/x/oauth2"
)

const (
	// SpotifyAuthURL is the Spotify authorization endpoint.
	SpotifyAuthURL = "https://accounts.spotify.com/authorize"

	// SpotifyTokenURL is the Spotify token endpoint.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// DefaultScopes are the Spotify scopes moodplay needs to drive a device
// and read playlists.
var DefaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-private",
	"playlist-read-private",
}

// Endpoint is the Spotify accounts endpoint. The client id travels in the
// form body because public clients have no secret.
var Endpoint = oauth2.Endpoint{
	AuthURL:   SpotifyAuthURL,
	TokenURL:  SpotifyTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// NewConfig returns the OAuth configuration for clientID.
func NewConfig(clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Endpoint: Endpoint,
		Scopes:   DefaultScopes,
	}
}
