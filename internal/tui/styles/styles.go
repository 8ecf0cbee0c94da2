package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/moodplay/internal/core"
)

// Colors
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Accent    = lipgloss.Color("#F59E0B") // Amber

	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")

	Background = lipgloss.Color("#1F2937")
	Surface    = lipgloss.Color("#374151")
	Border     = lipgloss.Color("#4B5563")
	Text       = lipgloss.Color("#F9FAFB")
	TextMuted  = lipgloss.Color("#9CA3AF")
	TextDim    = lipgloss.Color("#6B7280")
)

// Mood colors
var (
	HappyColor   = lipgloss.Color("#FACC15")
	SadColor     = lipgloss.Color("#60A5FA")
	AngryColor   = lipgloss.Color("#F87171")
	RelaxedColor = lipgloss.Color("#34D399")
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Success)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
		Foreground(Error)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
)

// Panel returns the border style for a panel.
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// MoodColor returns the accent color of a mood.
func MoodColor(m core.Mood) lipgloss.Color {
	switch m {
	case core.MoodHappy:
		return HappyColor
	case core.MoodSad:
		return SadColor
	case core.MoodAngry:
		return AngryColor
	default:
		return RelaxedColor
	}
}

// Mood renders a mood label in its color.
func Mood(m core.Mood) string {
	return lipgloss.NewStyle().Bold(true).Foreground(MoodColor(m)).Render(m.String())
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(state *core.PlaybackState) string {
	switch {
	case state.IsPlaying:
		return Playing.Render("▶")
	case state.Pending:
		return Muted.Render("…")
	default:
		return Paused.Render("⏸")
	}
}

// DeviceIcon returns an icon for device type
func DeviceIcon(t core.DeviceType) string {
	switch core.DeviceType(strings.ToLower(string(t))) {
	case core.DeviceTypeComputer:
		return "💻"
	case core.DeviceTypePhone:
		return "📱"
	case core.DeviceTypeSpeaker:
		return "🔊"
	case core.DeviceTypeTV:
		return "📺"
	default:
		return "🎧"
	}
}
