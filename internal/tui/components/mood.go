package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/tui/styles"
)

// Mood displays the committed mood and lets the user pick one by hand
type Mood struct {
	selected int
}

// NewMood creates a new Mood component
func NewMood() *Mood {
	return &Mood{}
}

// SelectNext selects the next mood
func (m *Mood) SelectNext() {
	if m.selected < len(core.Moods)-1 {
		m.selected++
	}
}

// SelectPrev selects the previous mood
func (m *Mood) SelectPrev() {
	if m.selected > 0 {
		m.selected--
	}
}

// Selected returns the highlighted mood
func (m *Mood) Selected() core.Mood {
	return core.Moods[m.selected]
}

// Render renders the mood panel
func (m *Mood) Render(state *core.PlaybackState, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Mood", focused)

	header := fmt.Sprintf("%s %s %s",
		state.Mood.Emoji(),
		styles.Mood(state.Mood),
		styles.Muted.Render(fmt.Sprintf("%d%%", state.ConfidencePercent())))

	var since string
	if !state.MoodSince.IsZero() {
		since = styles.Dim.Render("changed " + humanize.RelTime(state.MoodSince, now, "ago", "from now"))
	}

	listening := styles.Dim.Render("○ not listening")
	if state.Listening {
		listening = styles.Playing.Render("● listening")
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		header,
		since,
		listening,
		"",
		m.renderMoods(state.Mood, focused),
	))
}

func (m *Mood) renderMoods(committed core.Mood, focused bool) string {
	lines := make([]string, 0, len(core.Moods))

	for i, mood := range core.Moods {
		selector := "  "
		if focused && i == m.selected {
			selector = "▸ "
		}

		name := mood.String()
		if focused && i == m.selected {
			name = styles.Highlight.Render(name)
		}

		active := ""
		if mood == committed {
			active = styles.Playing.Render(" ●")
		}

		lines = append(lines, fmt.Sprintf("%s%s %s%s", selector, mood.Emoji(), name, active))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
