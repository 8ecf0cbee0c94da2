// Package classifier adapts external mood sources to periodic MoodEvents.
package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tessro/moodplay/internal/core"
	errs "github.com/tessro/moodplay/internal/errors"
)

// DefaultInterval is the classification cadence.
const DefaultInterval = 900 * time.Millisecond

// Classifier produces one reading per call.
type Classifier interface {
	Classify(ctx context.Context) (core.MoodEvent, error)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context) (core.MoodEvent, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context) (core.MoodEvent, error) {
	return f(ctx)
}

// expressionMoods maps facial expressions onto mood labels.
var expressionMoods = map[string]core.Mood{
	"happy":     core.MoodHappy,
	"surprised": core.MoodHappy,
	"sad":       core.MoodSad,
	"fearful":   core.MoodSad,
	"angry":     core.MoodAngry,
	"disgusted": core.MoodAngry,
	"neutral":   core.MoodRelaxed,
}

// MoodForExpression maps an expression name to a mood. Unknown
// expressions map to relaxed.
func MoodForExpression(expr string) core.Mood {
	if m, ok := expressionMoods[strings.ToLower(strings.TrimSpace(expr))]; ok {
		return m
	}
	return core.MoodRelaxed
}

// FromExpressions picks the strongest expression and converts it to a
// reading. An empty score set means no face was found.
func FromExpressions(scores map[string]float64, at time.Time) core.MoodEvent {
	best, bestScore := "", -1.0
	for expr, score := range scores {
		// Ties break alphabetically so the result is deterministic.
		if score > bestScore || (score == bestScore && expr < best) {
			best, bestScore = expr, score
		}
	}
	if best == "" {
		return core.NoFace(at)
	}
	return core.MoodEvent{
		Mood:       MoodForExpression(best),
		Confidence: Round2(core.ClampUnit(bestScore)),
		Timestamp:  at,
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Unavailable wraps err as a classifier failure.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", errs.ErrClassifierUnavailable, err)
}
