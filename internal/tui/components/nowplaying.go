package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/tui/styles"
)

// NowPlaying displays the loaded track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state *core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		content = styles.Muted.Render("Nothing to play for this mood")
	} else {
		content = n.renderTrack(state, width-4)
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

func (n *NowPlaying) renderTrack(state *core.PlaybackState, width int) string {
	track := state.Track

	icon := styles.StatusIcon(state)
	title := styles.Title.Width(width - 4).Render(track.Title)
	position := styles.Dim.Render(fmt.Sprintf("Track %d of %d", state.TrackIndex+1, state.TrackCount))

	// Room for "mm:ss " and " mm:ss"
	progressWidth := width - 14
	if progressWidth < 10 {
		progressWidth = 10
	}
	progress := fmt.Sprintf("%s %s %s",
		state.ElapsedLabel(),
		styles.ProgressBar(state.ProgressPercent(), progressWidth),
		state.DurationLabel())

	volume := styles.Muted.Render(fmt.Sprintf("🔊 %d%%", state.VolumePercent()))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+position,
		"",
		progress,
		"",
		volume,
		n.renderControls(state),
	)
}

func (n *NowPlaying) renderControls(state *core.PlaybackState) string {
	controls := styles.Dim.Render("⏮ ")

	if state.IsPlaying {
		controls += styles.Playing.Render("⏸")
	} else {
		controls += styles.Paused.Render("▶")
	}

	controls += styles.Dim.Render(" ⏭")

	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(controls)
}
