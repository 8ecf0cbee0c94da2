package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/tail"
	"github.com/tessro/moodplay/internal/tui/components"
	"github.com/tessro/moodplay/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelPlaylist
	PanelMood
	PanelHistory

	panelCount
)

const (
	seekStep   = 10 * time.Second
	volumeStep = 0.05
	maxHistory = 50
)

// Controller is the part of a session the dashboard drives.
type Controller interface {
	Snapshot() core.PlaybackState
	Playlist() core.Playlist
	Subscribe() (<-chan core.PlaybackState, func())

	TogglePlay()
	Next()
	Prev()
	Seek(fraction float64)
	SeekBy(delta time.Duration)
	AdjustVolume(delta float64)
	ToggleListening()
	SwitchMood(mood core.Mood)
}

// Model is the main TUI model
type Model struct {
	ctl         Controller
	updates     <-chan core.PlaybackState
	refreshRate time.Duration

	width        int
	height       int
	focusedPanel Panel
	now          time.Time

	// State
	state    core.PlaybackState
	seen     bool
	playlist core.Playlist
	history  []components.HistoryEntry

	// Components
	nowPlaying   *components.NowPlaying
	playlistView *components.Playlist
	moodView     *components.Mood
	historyView  *components.History

	keys     keyMap
	help     help.Model
	showHelp bool

	quitting bool
}

// NewModel creates a new TUI model reading from updates.
func NewModel(ctl Controller, updates <-chan core.PlaybackState, refreshRate time.Duration) Model {
	if refreshRate <= 0 {
		refreshRate = time.Second
	}
	return Model{
		ctl:          ctl,
		updates:      updates,
		refreshRate:  refreshRate,
		focusedPanel: PanelNowPlaying,
		now:          time.Now(),
		nowPlaying:   components.NewNowPlaying(),
		playlistView: components.NewPlaylist(),
		moodView:     components.NewMood(),
		historyView:  components.NewHistory(),
		keys:         newKeyMap(),
		help:         help.New(),
	}
}

// Messages
type tickMsg time.Time
type stateMsg core.PlaybackState
type closedMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(state)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForState())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()

	case stateMsg:
		m.applyState(core.PlaybackState(msg))
		return m, m.waitForState()

	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyState(state core.PlaybackState) {
	if m.seen {
		prev := m.state
		for _, e := range tail.Diff(&prev, &state) {
			switch e.Type {
			case tail.EventTrackComplete, tail.EventTrackSkip:
				m.addToHistory(&prev, e.Type == tail.EventTrackSkip)
			}
		}
	}
	m.state = state
	m.seen = true
	m.playlist = m.ctl.Playlist()
}

func (m *Model) addToHistory(prev *core.PlaybackState, skipped bool) {
	if !prev.HasTrack() {
		return
	}
	entry := components.HistoryEntry{
		Title:    prev.Track.Title,
		Mood:     prev.Mood,
		PlayedAt: time.Now(),
		Skipped:  skipped,
	}

	m.history = append([]components.HistoryEntry{entry}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.NextPanel):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil
	case key.Matches(msg, m.keys.PrevPanel):
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Transport
	switch {
	case key.Matches(msg, m.keys.PlayPause):
		m.ctl.TogglePlay()
	case key.Matches(msg, m.keys.Next):
		m.ctl.Next()
	case key.Matches(msg, m.keys.Prev):
		m.ctl.Prev()
	case key.Matches(msg, m.keys.SeekBack):
		m.ctl.SeekBy(-seekStep)
	case key.Matches(msg, m.keys.SeekForward):
		m.ctl.SeekBy(seekStep)
	case key.Matches(msg, m.keys.SeekTo):
		m.ctl.Seek(seekFraction(msg.String()))
	case key.Matches(msg, m.keys.VolumeUp):
		m.ctl.AdjustVolume(volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.ctl.AdjustVolume(-volumeStep)
	case key.Matches(msg, m.keys.Listen):
		m.ctl.ToggleListening()
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelPlaylist:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.playlistView.ScrollDown()
		case key.Matches(msg, m.keys.Up):
			m.playlistView.ScrollUp()
		}
	case PanelMood:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.moodView.SelectNext()
		case key.Matches(msg, m.keys.Up):
			m.moodView.SelectPrev()
		case key.Matches(msg, m.keys.Select):
			m.ctl.SwitchMood(m.moodView.Selected())
		}
	}

	return m, nil
}

// seekFraction maps the digit keys onto 0%..90% of the track.
func seekFraction(k string) float64 {
	if len(k) != 1 || k[0] < '0' || k[0] > '9' {
		return 0
	}
	return float64(k[0]-'0') / 10
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Left: Now Playing (top), Playlist (bottom)
	// Right: Mood (top), History (bottom)
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 45 / 100
	bottomHeight := m.height - topHeight - 3

	current := -1
	if m.state.HasTrack() {
		current = m.state.TrackIndex
	}

	nowPlaying := m.nowPlaying.Render(&m.state, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	playlist := m.playlistView.Render(m.playlist, current, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelPlaylist)
	mood := m.moodView.Render(&m.state, m.now, rightWidth-2, topHeight-2, m.focusedPanel == PanelMood)
	history := m.historyView.Render(m.history, m.now, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, playlist)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, mood, history)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) renderHelp() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("moodplay - Keyboard Shortcuts"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(content))
}

// Run starts the dashboard and blocks until the user quits, ctx ends or
// the controller stops publishing.
func Run(ctx context.Context, ctl Controller, refreshRate time.Duration) error {
	updates, cancel := ctl.Subscribe()
	defer cancel()

	model := NewModel(ctl, updates, refreshRate)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
