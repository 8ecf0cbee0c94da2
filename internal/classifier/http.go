package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tessro/moodplay/internal/core"
	errs "github.com/tessro/moodplay/internal/errors"
)

// HTTP polls an expression-detection service.
//
// The endpoint answers GET with {"faces":[{"expressions":{"happy":0.9,...}}]}.
// The first face is used; an empty face list is a frame without a face.
type HTTP struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTP creates an HTTP classifier for endpoint.
func NewHTTP(endpoint string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultInterval
	}
	return &HTTP{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detection struct {
	Faces []struct {
		Expressions map[string]float64 `json:"expressions"`
	} `json:"faces"`
}

// Classify fetches one detection and converts it to a reading.
func (h *HTTP) Classify(ctx context.Context) (core.MoodEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint, nil)
	if err != nil {
		return core.MoodEvent{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return core.MoodEvent{}, fmt.Errorf("request failed: %w", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return core.MoodEvent{}, fmt.Errorf("%w: %w", errs.ErrTimeout, err)
		}
		return core.MoodEvent{}, fmt.Errorf("%w: %w", errs.ErrNetworkError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return core.MoodEvent{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.MoodEvent{}, fmt.Errorf("classifier error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var d detection
	if err := json.Unmarshal(body, &d); err != nil {
		return core.MoodEvent{}, fmt.Errorf("failed to parse response: %w", err)
	}

	now := time.Now()
	if len(d.Faces) == 0 {
		return core.NoFace(now), nil
	}
	return FromExpressions(d.Faces[0].Expressions, now), nil
}
