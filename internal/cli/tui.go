package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/logging"
	"github.com/tessro/moodplay/internal/tui"
)

var (
	tuiRefresh int
	tuiOutput  string
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, progress, volume
  • Playlist - tracks for the current mood
  • Mood - detected mood, confidence, listening state
  • History - recently played tracks

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space        Play/Pause
  n / p        Next / previous track
  ← / →        Seek 10 seconds
  0-9          Seek to 0-90%
  +/-          Volume up/down
  l            Listening on/off
  Tab          Switch panel
  Enter        Switch to the selected mood (Mood panel)

Logs go to log.file only, since the dashboard owns the terminal.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	tuiCmd.Flags().StringVarP(&tuiOutput, "output", "o", "", "audio output: local, spotify or sim (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("the dashboard needs a terminal; use 'moodplay run' instead")
	}
	if tuiOutput != "" {
		cfg.Playback.Output = tuiOutput
		if err := cfg.Playback.Validate(); err != nil {
			return err
		}
	}

	logger, closer, err := logging.Quiet(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	switch cfg.TUI.Theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newController(ctx, logger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	go func() { runErr <- c.session.Run(runCtx) }()

	c.serveMetrics(runCtx)
	c.watchCatalog(runCtx)

	refresh := config.Millis(cfg.TUI.RefreshInterval)
	if tuiRefresh > 0 {
		refresh = time.Duration(tuiRefresh) * time.Millisecond
	}

	uiErr := tui.Run(runCtx, c.session, refresh)

	// Release the media before returning.
	cancel()
	if err := <-runErr; err != nil {
		return err
	}
	return uiErr
}
