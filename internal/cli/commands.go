package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tessro/moodplay/internal/core"
)

// errQuit is returned by the quit command.
var errQuit = errors.New("quit")

// commander is the session surface reachable from typed commands.
type commander interface {
	Snapshot() core.PlaybackState
	Play()
	Pause()
	TogglePlay()
	Next()
	Prev()
	Seek(fraction float64)
	SetVolume(v float64)
	ToggleListening()
	SwitchMood(mood core.Mood)
}

const commandHelp = `commands:
  play | pause | toggle     transport
  next | prev               change track
  seek <0-100>              seek to a percentage of the track
  vol <0-100>               set the volume
  mood <name>               switch mood by hand
  listen                    toggle listening
  status                    print the current state
  quit                      stop moodplay`

// execute applies one command line. It returns text to print, if any.
func execute(c commander, line string) (string, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return "", nil
	}

	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "play":
		c.Play()
	case "pause", "stop":
		c.Pause()
	case "toggle", "t":
		c.TogglePlay()
	case "next", "n":
		c.Next()
	case "prev", "p":
		c.Prev()
	case "seek":
		pct, err := parsePercent(arg)
		if err != nil {
			return "", err
		}
		c.Seek(pct)
	case "vol", "volume":
		pct, err := parsePercent(arg)
		if err != nil {
			return "", err
		}
		c.SetVolume(pct)
	case "mood":
		mood, err := core.ParseMood(arg)
		if err != nil {
			return "", err
		}
		c.SwitchMood(mood)
	case "listen", "l":
		c.ToggleListening()
	case "status", "s":
		return formatStatus(c.Snapshot(), true), nil
	case "help", "?":
		return commandHelp, nil
	case "quit", "q", "exit":
		return "", errQuit
	default:
		return "", fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
	return "", nil
}

// parsePercent parses 0..100 into a fraction.
func parsePercent(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("missing value (0-100)")
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q (0-100)", s)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("value %s out of range (0-100)", s)
	}
	return v / 100, nil
}

// readCommands executes lines from r until EOF, ctx ends or quit is typed.
// quit is called for the quit command only.
func readCommands(ctx context.Context, r io.Reader, out io.Writer, c commander, quit func()) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		reply, err := execute(c, scanner.Text())
		switch {
		case errors.Is(err, errQuit):
			quit()
			return
		case err != nil:
			fmt.Fprintf(out, "error: %v\n", err)
		case reply != "":
			fmt.Fprintln(out, reply)
		}
	}
}
