package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/tessro/moodplay/internal/core"
	"golang.org/x/term"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// formatStatus renders a one-line summary of a snapshot.
func formatStatus(s core.PlaybackState, emoji bool) string {
	var b strings.Builder

	if emoji {
		b.WriteString(s.Mood.Emoji() + " ")
	}
	fmt.Fprintf(&b, "%s %d%%", s.Mood, s.ConfidencePercent())

	b.WriteString(" | ")
	switch {
	case !s.HasTrack():
		b.WriteString("idle")
	default:
		state := s.Status.String()
		if s.Pending {
			state = "starting"
		}
		fmt.Fprintf(&b, "%s %s [%d/%d] %s / %s",
			state, s.Track.Title, s.TrackIndex+1, s.TrackCount, s.ElapsedLabel(), s.DurationLabel())
	}

	fmt.Fprintf(&b, " | vol %d%%", s.VolumePercent())

	if s.Listening {
		b.WriteString(" | listening")
	}
	return b.String()
}
