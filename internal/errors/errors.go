package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrPlaybackRejected      = errors.New("playback rejected")
	ErrEmptyPlaylist         = errors.New("no playable tracks")
	ErrNoSource              = errors.New("no source loaded")
	ErrUnsupportedSource     = errors.New("unsupported source")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrNoActiveDevice        = errors.New("no active device")
	ErrDeviceNotFound        = errors.New("device not found")
	ErrPremiumRequired       = errors.New("spotify premium required")
	ErrRateLimited           = errors.New("rate limited")
	ErrNetworkError          = errors.New("network error")
	ErrTimeout               = errors.New("request timeout")
	ErrConfigNotFound        = errors.New("config file not found")
	ErrInvalidConfig         = errors.New("invalid configuration")
)

// MoodError wraps an error with a user-friendly suggestion.
type MoodError struct {
	Err        error
	Suggestion string
}

func (e *MoodError) Error() string {
	return e.Err.Error()
}

func (e *MoodError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &MoodError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Rejected marks err as a rejected start request.
func Rejected(err error) error {
	if err == nil || errors.Is(err, ErrPlaybackRejected) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPlaybackRejected, err)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var moodErr *MoodError
	if errors.As(err, &moodErr) && moodErr.Suggestion != "" {
		return moodErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrClassifierUnavailable) {
		return "Check that the classifier endpoint or script is reachable, then press 'l' to listen again"
	}

	if errors.Is(err, ErrEmptyPlaylist) {
		return "Add tracks for the relaxed mood; it is used whenever a mood has none"
	}

	if errors.Is(err, ErrUnsupportedSource) {
		return "Local output plays .mp3 and .wav files; use --output spotify for spotify: URIs"
	}

	// Authentication errors
	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "not authenticated") ||
		strings.Contains(errStr, "invalid access token") || strings.Contains(errStr, "token expired") {
		return "Place a Spotify token at the path shown by 'moodplay auth status'"
	}

	// Device errors
	if errors.Is(err, ErrNoActiveDevice) || strings.Contains(errStr, "no active device") {
		return "Open Spotify on a device, or run 'moodplay config set-device' to pick one"
	}

	if errors.Is(err, ErrDeviceNotFound) || strings.Contains(errStr, "device not found") {
		return "Run 'moodplay devices' to see available devices"
	}

	if errors.Is(err, ErrPremiumRequired) || strings.Contains(errStr, "premium required") ||
		strings.Contains(errStr, "restricted device") {
		return "Spotify Connect playback requires Spotify Premium"
	}

	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your network connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || strings.Contains(errStr, "config") {
		return "Run 'moodplay config init' to create a configuration file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
