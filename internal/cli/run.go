package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/logging"
	"github.com/tessro/moodplay/internal/tail"
)

var (
	runOutput    string
	runMood      string
	runPlay      bool
	runNoListen  bool
	runNoEmoji   bool
	runTimestamp bool
	runFormat    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play music that follows your mood",
	Long: `Start a session and print playback events as they happen.

Events printed:
  - Mood changes (with classifier confidence)
  - Track changes, completions and skips
  - Pause/Resume
  - Volume and listening changes

Commands can be typed on stdin while running; type 'help' for the list.`,
	Example: `  moodplay run --play
  moodplay run --output sim --mood happy
  moodplay run --format '{{.Time}} {{.Mood}} {{.Title}}'`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "audio output: local, spotify or sim (default from config)")
	runCmd.Flags().StringVarP(&runMood, "mood", "m", "", "initial mood (default from config)")
	runCmd.Flags().BoolVarP(&runPlay, "play", "p", false, "start playing immediately")
	runCmd.Flags().BoolVar(&runNoListen, "no-listen", false, "do not start the classifier")
	runCmd.Flags().BoolVar(&runNoEmoji, "no-emoji", false, "disable emoji output")
	runCmd.Flags().BoolVarP(&runTimestamp, "timestamp", "t", false, "show timestamps")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "custom format template")

	rootCmd.AddCommand(runCmd)
}

func applyRunFlags() error {
	if runOutput != "" {
		cfg.Playback.Output = runOutput
	}
	if runMood != "" {
		cfg.Playback.InitialMood = runMood
	}
	if runNoListen {
		listen := false
		cfg.Classifier.Listen = &listen
	}
	return cfg.Validate()
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(); err != nil {
		return err
	}
	if runFormat == "" {
		runFormat = cfg.Tail.Format
	}
	if err := tail.ParseTemplate(runFormat); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	logger, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File, Verbose())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newController(ctx, logger)
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- c.session.Run(ctx) }()

	c.serveMetrics(ctx)
	c.watchCatalog(ctx)
	if runPlay {
		c.session.Play()
	}

	go readCommands(ctx, os.Stdin, os.Stdout, c.session, stop)

	formatter := tail.NewFormatter(
		tail.WithEmoji(cfg.Tail.EmojiEnabled() && !runNoEmoji && isTerminal(os.Stdout)),
		tail.WithTimestamp(cfg.Tail.Timestamp || runTimestamp),
		tail.WithTemplate(runFormat),
	)
	watcher := tail.NewWatcher(c.session, config.Millis(cfg.Tail.Interval))
	go func() { _ = watcher.Start(ctx) }()

	events := watcher.Events()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := printEvent(formatter, e); err != nil {
				return err
			}
		case err := <-runErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
	}
}

type eventJSON struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	State     interface{} `json:"state"`
}

func printEvent(f *tail.Formatter, e tail.Event) error {
	if JSONOutput() {
		return printJSON(eventJSON{
			Type:      tail.EventTypeName(e.Type),
			Timestamp: e.Timestamp,
			State:     e.Current,
		})
	}
	fmt.Println(f.Format(e))
	return nil
}
