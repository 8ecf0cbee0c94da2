package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	moodErrors "github.com/tessro/moodplay/internal/errors"
)

// TokenSource returns a source that refreshes the stored token through cfg
// and writes every new token back to storage.
func TokenSource(ctx context.Context, cfg *oauth2.Config, storage *TokenStorage) (oauth2.TokenSource, error) {
	token, err := storage.Load()
	if err != nil {
		return nil, err
	}
	if token == nil || (token.RefreshToken == "" && token.AccessToken == "") {
		return nil, moodErrors.WithSuggestion(moodErrors.ErrNotAuthenticated,
			fmt.Sprintf("Store a Spotify token at %s", storage.Path()))
	}
	return newSavingSource(cfg.TokenSource(ctx, token), storage, token), nil
}

type savingSource struct {
	base    oauth2.TokenSource
	storage *TokenStorage

	mu   sync.Mutex
	last string
}

func newSavingSource(base oauth2.TokenSource, storage *TokenStorage, initial *oauth2.Token) *savingSource {
	s := &savingSource{base: base, storage: storage}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return s
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if err := s.storage.Save(token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
	}
	return token, nil
}

// Describe summarizes a stored token for display.
func Describe(token *oauth2.Token) string {
	switch {
	case token == nil:
		return "not authenticated"
	case token.Valid():
		return "authenticated"
	case token.RefreshToken != "":
		return "expired (will refresh)"
	default:
		return "expired"
	}
}
