package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	moodErrors "github.com/tessro/moodplay/internal/errors"
)

const (
	// BaseURL is the Spotify Web API base URL.
	BaseURL = "https://api.spotify.com/v1"

	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is a Spotify Web API client. Authentication is delegated to the
// HTTP client, normally one built by oauth2.NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryWait  time.Duration
	logger     zerolog.Logger
}

// New creates a client that sends requests through httpClient.
func New(httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    BaseURL,
		retryWait:  baseRetryWait,
		logger:     logger,
	}
}

// NewWithTokenSource creates a client authorized by ts.
func NewWithTokenSource(ctx context.Context, ts oauth2.TokenSource, logger zerolog.Logger) *Client {
	return New(oauth2.NewClient(ctx, ts), logger)
}

// SetBaseURL points the client at another API root.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Get performs a GET request to the Spotify API.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request to the Spotify API.
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request to the Spotify API.
func (c *Client) Put(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPut, path, body, result)
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		fullURL = c.baseURL + path
	}

	ev := c.logger.Debug().Str("method", method).Str("url", fullURL)
	if jsonBody != nil {
		ev = ev.RawJSON("body", jsonBody)
	}
	ev.Msg("spotify request")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1))
			c.logger.Debug().Int("attempt", attempt).Dur("wait", wait).Err(lastErr).Msg("spotify retry")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = strings.NewReader(string(jsonBody))
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Token failures surface here and will not fix themselves.
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return fmt.Errorf("%w: %w", moodErrors.ErrNotAuthenticated, err)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %w", moodErrors.ErrNetworkError, err)
			c.logger.Debug().Err(err).Msg("spotify network error")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.logger.Debug().Int("status", resp.StatusCode).Msg("spotify response")

		if resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = parseAPIError(resp.StatusCode, respBody)
			continue
		}

		if resp.StatusCode >= 400 {
			return parseAPIError(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func parseAPIError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorInfo.Message != "" {
		if apiErr.ErrorInfo.Status == 0 {
			apiErr.ErrorInfo.Status = status
		}
		return &apiErr
	}
	apiErr.ErrorInfo.Status = status
	apiErr.ErrorInfo.Message = strings.TrimSpace(string(body))
	if apiErr.ErrorInfo.Message == "" {
		apiErr.ErrorInfo.Message = http.StatusText(status)
	}
	return &apiErr
}

// APIError represents a Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Spotify API error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

// Is maps API statuses onto the shared sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case moodErrors.ErrNotAuthenticated:
		return e.ErrorInfo.Status == http.StatusUnauthorized
	case moodErrors.ErrNoActiveDevice:
		return e.IsNoActiveDevice()
	case moodErrors.ErrPremiumRequired:
		return e.ErrorInfo.Status == http.StatusForbidden && e.ErrorInfo.Reason == "PREMIUM_REQUIRED"
	case moodErrors.ErrRateLimited:
		return e.ErrorInfo.Status == http.StatusTooManyRequests
	}
	return false
}

// IsNoActiveDevice returns true if the error indicates no active device.
func (e *APIError) IsNoActiveDevice() bool {
	return e.ErrorInfo.Status == http.StatusNotFound
}

// IsAlreadyPlayingError checks if an error is a 403 "restriction violated" error,
// which occurs when trying to resume playback that is already active.
func IsAlreadyPlayingError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorInfo.Status == http.StatusForbidden && apiErr.ErrorInfo.Reason != "PREMIUM_REQUIRED"
	}
	return false
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
