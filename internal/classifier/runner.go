package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/tessro/moodplay/internal/core"
)

// Runner polls a classifier at a fixed interval.
type Runner struct {
	classifier Classifier
	interval   time.Duration
}

// NewRunner creates a runner. A zero interval uses DefaultInterval.
func NewRunner(c Classifier, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{classifier: c, interval: interval}
}

// Interval returns the polling cadence.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Run classifies once per tick and hands each reading to emit until ctx is
// cancelled or the classifier fails. Failures are returned wrapped as
// ErrClassifierUnavailable; cancellation returns nil.
func (r *Runner) Run(ctx context.Context, emit func(core.MoodEvent)) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ev, err := r.classifier.Classify(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return Unavailable(err)
			}
			if ev.Timestamp.IsZero() {
				ev.Timestamp = time.Now()
			}
			emit(ev)
		}
	}
}

// ErrExhausted is returned by a non-looping script once it runs out of lines.
var ErrExhausted = errors.New("script exhausted")
