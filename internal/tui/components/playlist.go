package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/tui/styles"
)

// Playlist displays the tracks of the committed mood
type Playlist struct {
	offset int
}

// NewPlaylist creates a new Playlist component
func NewPlaylist() *Playlist {
	return &Playlist{}
}

// ScrollDown scrolls the list down
func (p *Playlist) ScrollDown() {
	p.offset++
}

// ScrollUp scrolls the list up
func (p *Playlist) ScrollUp() {
	if p.offset > 0 {
		p.offset--
	}
}

// Render renders the playlist panel. current is the loaded index, or -1.
func (p *Playlist) Render(playlist core.Playlist, current, width, height int, focused bool) string {
	title := styles.PanelTitle("Playlist", focused)
	if !playlist.IsEmpty() {
		title = styles.PanelTitle(fmt.Sprintf("Playlist · %s", playlist.Mood), focused)
	}

	var content string
	if playlist.IsEmpty() {
		content = styles.Muted.Render("No tracks")
	} else {
		content = p.renderTracks(playlist.Tracks, current, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (p *Playlist) renderTracks(tracks []core.Track, current, width, maxLines int) string {
	if p.offset >= len(tracks) {
		p.offset = 0
	}

	// Leave room for the "more" indicator
	visible := maxLines - 1
	if visible < 1 {
		visible = 1
	}

	start := p.offset
	end := start + visible
	if end > len(tracks) {
		end = len(tracks)
	}

	lines := make([]string, 0, end-start+1)

	// "XX. " plus the marker
	const overhead = 6

	for i := start; i < end; i++ {
		num := fmt.Sprintf("%2d.", i+1)
		title := truncate(tracks[i].Title, width-overhead)

		if i == current {
			lines = append(lines, styles.Playing.Render(fmt.Sprintf("%s ▶ %s", num, title)))
		} else {
			lines = append(lines, fmt.Sprintf("%s   %s", styles.Dim.Render(num), title))
		}
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
