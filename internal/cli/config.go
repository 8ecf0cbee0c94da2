package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/spotify/auth"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing moodplay configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys take the form section.field.

Common keys:
  playback.initial_mood     Mood to start in (happy, sad, angry, relaxed)
  playback.volume           Starting volume (0.0-1.0)
  playback.output           Audio output (local, spotify, sim)
  classifier.kind           Mood classifier (none, script, http)
  classifier.interval       Milliseconds between readings
  dispatch.min_confidence   Ignore readings below this confidence
  catalog.source            Playlist source (builtin, config, dir, spotify)
  spotify.client_id         Spotify client ID
  spotify.device            Spotify Connect device name or ID

The file is validated before it is written.`,
	Example: `  moodplay config set playback.output sim
  moodplay config set playback.volume 0.4
  moodplay config set spotify.device "Kitchen"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetDeviceCmd = &cobra.Command{
	Use:   "set-device",
	Short: "Interactively select the Spotify device",
	Long:  `Shows a picker to select the Spotify Connect device moodplay plays on.`,
	RunE:  runConfigSetDevice,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetDeviceCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := configPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return printJSON(map[string]interface{}{"path": path, "exists": exists})
	}
	if exists {
		fmt.Println(path)
	} else {
		fmt.Printf("%s (not created yet)\n", path)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'moodplay config init' first", path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeConfigFile(path, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   path,
		})
	}

	fmt.Printf("Created config file: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Try it out with 'moodplay run --output sim --play'")
	fmt.Println("  2. Point catalog.music_dir at your music with catalog.source = \"dir\"")
	fmt.Println("  3. For Spotify, set spotify.client_id and place a token at the path from 'moodplay auth status'")
	return nil
}

// writeConfigFile encodes v as TOML under the standard header.
func writeConfigFile(path string, v interface{}) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# moodplay configuration")
	fmt.Fprintf(&buf, "# Spotify scopes: %s\n", strings.Join(auth.DefaultScopes, " "))
	fmt.Fprintln(&buf)

	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

var (
	intKeys = map[string]bool{
		"classifier.interval":   true,
		"dispatch.hold":         true,
		"spotify.poll_interval": true,
		"sim.track_length":      true,
		"sim.latency":           true,
		"tail.interval":         true,
		"tui.refresh_interval":  true,
	}
	floatKeys = map[string]bool{
		"playback.volume":         true,
		"dispatch.min_confidence": true,
	}
	boolKeys = map[string]bool{
		"playback.pause_when_not_listening": true,
		"classifier.loop":                   true,
		"classifier.listen":                 true,
		"catalog.watch":                     true,
		"tail.emoji":                        true,
		"tail.timestamp":                    true,
		"sim.reject_play":                   true,
	}
)

// parseConfigValue converts a command-line value into the TOML type the key expects.
func parseConfigValue(key, value string) (interface{}, error) {
	switch {
	case intKeys[key]:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return int64(i), nil
	case floatKeys[key]:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number for %s", key)
		}
		return f, nil
	case boolKeys[key]:
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("value must be true or false for %s", key)
	default:
		return value, nil
	}
}

// setConfigValue stores value under section.field in raw and checks the
// result is a valid configuration.
func setConfigValue(raw map[string]interface{}, key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid key format. Use 'section.field' (e.g., playback.output)")
	}
	section, field := parts[0], parts[1]

	typed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	sectionMap, ok := raw[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		raw[section] = sectionMap
	}
	sectionMap[field] = typed

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	var check config.Config
	md, err := toml.Decode(buf.String(), &check)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	for _, k := range md.Undecoded() {
		if len(k) >= 2 && k[0] == section && k[1] == field {
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	check.ApplyDefaults()
	return check.Validate()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'moodplay config init' first", path)
	}

	raw := make(map[string]interface{})
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := setConfigValue(raw, key, value); err != nil {
		return err
	}

	if err := writeConfigFile(path, raw); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigSetDevice(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	devices, err := listDevices(ctx)
	cancel()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		return fmt.Errorf("no devices found. Make sure Spotify is open on at least one device")
	}

	var options []huh.Option[string]
	for _, d := range devices {
		label := d.Name
		if d.Type != "" {
			label = fmt.Sprintf("%s (%s)", d.Name, d.Type)
		}
		if d.IsActive {
			label += " [active]"
		}
		options = append(options, huh.NewOption(label, d.Name))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select playback device").
				Description("moodplay plays here when output is spotify").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	return runConfigSet(cmd, []string{"spotify.device", selected})
}
