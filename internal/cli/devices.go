package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/spotify/player"
	"github.com/tessro/moodplay/internal/tui/styles"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List Spotify Connect devices",
	Long: `Lists the Spotify Connect devices moodplay can play on.

The configured default (spotify.device) is marked with ★.`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func listDevices(ctx context.Context) ([]core.Device, error) {
	logger := zerolog.Nop()
	if Verbose() {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	}
	spotifyClient, err := newSpotifyClient(ctx, logger)
	if err != nil {
		return nil, err
	}
	return player.GetDevices(ctx, spotifyClient)
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	devices, err := listDevices(ctx)
	if err != nil {
		return err
	}

	if JSONOutput() {
		if devices == nil {
			devices = []core.Device{}
		}
		return printJSON(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found. Open Spotify on a device first.")
		return nil
	}

	t := NewTable("", "NAME", "TYPE", "VOLUME", "")
	for _, d := range devices {
		def := ""
		if isDefaultDevice(d, cfg.Spotify.Device) {
			def = "★"
		}
		t.Row(StatusIcon(d.IsActive), styles.DeviceIcon(d.Type)+" "+d.Name, string(d.Type), strconv.Itoa(d.Volume)+"%", def)
	}
	t.Flush()

	if Verbose() {
		fmt.Println()
		for _, d := range devices {
			fmt.Printf("%s  %s\n", d.ID, d.Name)
		}
	}
	return nil
}

func isDefaultDevice(d core.Device, configured string) bool {
	return configured != "" && (d.ID == configured || strings.EqualFold(d.Name, configured))
}
