package classifier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tessro/moodplay/internal/core"
)

// Script replays readings from a text source, one per call.
//
// Each line is "<mood-or-expression> [confidence]". Blank lines and lines
// starting with '#' are skipped; "none" (or "-") is a frame without a face.
type Script struct {
	mu    sync.Mutex
	lines []scriptLine
	next  int
	loop  bool
}

type scriptLine struct {
	mood       core.Mood
	confidence float64
}

// ParseScript reads a script from r.
func ParseScript(r io.Reader, loop bool) (*Script, error) {
	s := &Script{loop: loop}
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := parseScriptLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		s.lines = append(s.lines, parsed)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(s.lines) == 0 {
		return nil, fmt.Errorf("script has no readings")
	}
	return s, nil
}

// LoadScript reads a script file.
func LoadScript(path string, loop bool) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseScript(f, loop)
}

func parseScriptLine(line string) (scriptLine, error) {
	fields := strings.Fields(line)
	label := strings.ToLower(fields[0])

	if label == "none" || label == "-" {
		return scriptLine{mood: core.MoodRelaxed, confidence: 0}, nil
	}

	mood, err := core.ParseMood(label)
	if err != nil {
		if _, known := expressionMoods[label]; !known {
			return scriptLine{}, err
		}
		mood = MoodForExpression(label)
	}

	confidence := 1.0
	if len(fields) > 1 {
		c, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return scriptLine{}, fmt.Errorf("invalid confidence %q: %w", fields[1], err)
		}
		confidence = core.ClampUnit(c)
	}
	return scriptLine{mood: mood, confidence: Round2(confidence)}, nil
}

// Classify returns the next reading.
func (s *Script) Classify(ctx context.Context) (core.MoodEvent, error) {
	if err := ctx.Err(); err != nil {
		return core.MoodEvent{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.lines) {
		if !s.loop {
			return core.MoodEvent{}, ErrExhausted
		}
		s.next = 0
	}
	line := s.lines[s.next]
	s.next++

	return core.MoodEvent{
		Mood:       line.mood,
		Confidence: line.confidence,
		Timestamp:  time.Now(),
	}, nil
}

// Len returns the number of readings in the script.
func (s *Script) Len() int {
	return len(s.lines)
}
