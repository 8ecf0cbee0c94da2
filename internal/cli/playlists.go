package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/logging"
	"github.com/tessro/moodplay/internal/selector"
)

var playlistsTracks bool

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Show the playlist each mood resolves to",
	Long: `Loads the configured catalog and shows what would play for each mood.

Moods without tracks fall back to the relaxed playlist; those rows are
marked as fallbacks.`,
	RunE: runPlaylists,
}

func init() {
	playlistsCmd.Flags().BoolVarP(&playlistsTracks, "tracks", "t", false, "list every track")
	rootCmd.AddCommand(playlistsCmd)
}

type playlistRow struct {
	Mood     core.Mood    `json:"mood"`
	Resolved core.Mood    `json:"resolved"`
	Fallback bool         `json:"fallback"`
	Tracks   []core.Track `json:"tracks"`
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File, Verbose())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	c := &controller{logger: logger}
	if cfg.Catalog.Source == "spotify" {
		if c.spotify, err = newSpotifyClient(ctx, logger); err != nil {
			return err
		}
	}

	table, err := c.loadCatalog(ctx)
	if err != nil {
		return err
	}
	rows := resolvePlaylists(selector.New(table))

	if JSONOutput() {
		return printJSON(rows)
	}

	if playlistsTracks {
		for _, r := range rows {
			fmt.Printf("%s %s%s\n", r.Mood.Emoji(), r.Mood, fallbackNote(r))
			for i, t := range r.Tracks {
				fmt.Printf("  %2d. %s  %s\n", i+1, t.Title, t.Source)
			}
		}
		return nil
	}

	tbl := NewTable("MOOD", "TRACKS", "FIRST TRACK", "")
	for _, r := range rows {
		first := "-"
		if len(r.Tracks) > 0 {
			first = TruncateString(r.Tracks[0].Title, 40)
		}
		tbl.Row(
			r.Mood.Emoji()+" "+r.Mood.String(),
			humanize.Comma(int64(len(r.Tracks))),
			first,
			strings.TrimSpace(fallbackNote(r)),
		)
	}
	tbl.Flush()
	return nil
}

func resolvePlaylists(sel *selector.Selector) []playlistRow {
	rows := make([]playlistRow, 0, len(core.Moods))
	for _, m := range core.Moods {
		pl := sel.Resolve(m)
		rows = append(rows, playlistRow{
			Mood:     m,
			Resolved: pl.Mood,
			Fallback: !pl.IsEmpty() && pl.Mood != m,
			Tracks:   pl.Tracks,
		})
	}
	return rows
}

func fallbackNote(r playlistRow) string {
	switch {
	case len(r.Tracks) == 0:
		return " (nothing to play)"
	case r.Fallback:
		return fmt.Sprintf(" (fallback: %s)", r.Resolved)
	}
	return ""
}
