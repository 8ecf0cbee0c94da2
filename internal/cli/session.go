package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/catalog"
	"github.com/tessro/moodplay/internal/classifier"
	"github.com/tessro/moodplay/internal/config"
	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/dispatch"
	moodErrors "github.com/tessro/moodplay/internal/errors"
	"github.com/tessro/moodplay/internal/logging"
	"github.com/tessro/moodplay/internal/media/local"
	"github.com/tessro/moodplay/internal/media/sim"
	"github.com/tessro/moodplay/internal/selector"
	"github.com/tessro/moodplay/internal/session"
	"github.com/tessro/moodplay/internal/spotify/auth"
	"github.com/tessro/moodplay/internal/spotify/client"
	"github.com/tessro/moodplay/internal/spotify/player"
	"github.com/tessro/moodplay/internal/telemetry"
)

const (
	classifierTimeout = 5 * time.Second
	simTick           = 250 * time.Millisecond
)

// controller bundles a session with the services around it.
type controller struct {
	session *session.Session
	metrics *telemetry.Metrics
	spotify *client.Client
	logger  zerolog.Logger
}

// newController wires media, catalog and classifier from the loaded config.
func newController(ctx context.Context, logger zerolog.Logger) (*controller, error) {
	c := &controller{
		metrics: telemetry.New(),
		logger:  logger,
	}

	if cfg.Playback.Output == "spotify" || cfg.Catalog.Source == "spotify" {
		sc, err := newSpotifyClient(ctx, logger)
		if err != nil {
			return nil, err
		}
		c.spotify = sc
	}

	table, err := c.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	media, err := c.newMedia(ctx)
	if err != nil {
		return nil, err
	}

	cls, err := newClassifier()
	if err != nil {
		_ = media.Close()
		return nil, err
	}

	mood, err := core.ParseMood(cfg.Playback.InitialMood)
	if err != nil {
		_ = media.Close()
		return nil, err
	}

	c.session = session.New(session.Config{
		Media:       media,
		Selector:    selector.New(table),
		InitialMood: mood,
		Volume:      cfg.Playback.Volume,
		Classifier:  cls,
		Interval:    config.Millis(cfg.Classifier.Interval),
		Listen:      cls != nil && cfg.Classifier.ListenOnStart(),
		Hysteresis: dispatch.Hysteresis{
			MinConfidence: cfg.Dispatch.MinConfidence,
			Hold:          cfg.Dispatch.Hold,
		},
		PauseWhenNotListening: cfg.Playback.PauseWhenNotListening,
		Logger:                logger,
		Observer:              c.metrics,
	})
	return c, nil
}

func (c *controller) loadCatalog(ctx context.Context) (selector.Table, error) {
	var lister catalog.TrackLister
	if c.spotify != nil {
		lister = player.NewCatalog(c.spotify)
	}
	table, err := catalog.Load(ctx, cfg.Catalog, lister, logging.Component(c.logger, "catalog"))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return table, nil
}

func (c *controller) newMedia(ctx context.Context) (core.Media, error) {
	logger := logging.Component(c.logger, "media")

	switch cfg.Playback.Output {
	case "", "local":
		return local.New(local.WithLogger(logger)), nil
	case "sim":
		return sim.New(sim.Config{
			TrackLength: time.Duration(cfg.Sim.TrackLength) * time.Second,
			Latency:     config.Millis(cfg.Sim.Latency),
			Tick:        simTick,
			RejectPlay:  cfg.Sim.RejectPlay,
		}, logger), nil
	case "spotify":
		deviceID, err := resolveDevice(ctx, c.spotify, cfg.Spotify.Device)
		if err != nil {
			return nil, err
		}
		return player.New(c.spotify,
			player.WithDevice(deviceID),
			player.WithPollInterval(config.Millis(cfg.Spotify.PollInterval)),
			player.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown output: %s", cfg.Playback.Output)
	}
}

// watchCatalog reloads the catalog whenever its files change.
func (c *controller) watchCatalog(ctx context.Context) {
	if !cfg.Catalog.Watch {
		return
	}
	paths := catalog.WatchPaths(cfg.Catalog, configPath())
	if len(paths) == 0 {
		c.logger.Warn().Str("source", cfg.Catalog.Source).Msg("catalog source cannot be watched")
		return
	}

	w := catalog.NewWatcher(logging.Component(c.logger, "watch"), paths...)
	go func() {
		err := w.Run(ctx, func() {
			catCfg := cfg.Catalog
			if cfg.Catalog.Source == "config" {
				fresh, err := config.LoadFrom(configPath())
				if err != nil {
					c.logger.Warn().Err(err).Msg("config reload failed")
					return
				}
				catCfg = fresh.Catalog
			}
			table, err := catalog.Load(ctx, catCfg, nil, c.logger)
			if err != nil {
				c.logger.Warn().Err(err).Msg("catalog reload failed")
				return
			}
			c.session.Reload(selector.New(table))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn().Err(err).Msg("catalog watcher stopped")
		}
	}()
}

// serveMetrics exposes the registry when metrics.addr is set.
func (c *controller) serveMetrics(ctx context.Context) {
	if cfg.Metrics.Addr == "" {
		return
	}
	go func() {
		if err := c.metrics.Serve(ctx, cfg.Metrics.Addr, logging.Component(c.logger, "metrics")); err != nil {
			c.logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func newSpotifyClient(ctx context.Context, logger zerolog.Logger) (*client.Client, error) {
	if cfg.Spotify.ClientID == "" {
		return nil, moodErrors.WithSuggestion(
			errors.New("spotify.client_id not configured"),
			"Set it with 'moodplay config set spotify.client_id <id>' or MOODPLAY_SPOTIFY_CLIENT_ID")
	}

	storage, err := auth.NewTokenStorage(cfg.Spotify.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}

	ts, err := auth.TokenSource(ctx, auth.NewConfig(cfg.Spotify.ClientID), storage)
	if err != nil {
		return nil, err
	}
	return client.NewWithTokenSource(ctx, ts, logging.Component(logger, "spotify")), nil
}

// resolveDevice maps a configured device name or id onto a device id.
// An empty name targets whichever device is active.
func resolveDevice(ctx context.Context, api player.DeviceLister, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	devices, err := player.GetDevices(ctx, api)
	if err != nil {
		return "", fmt.Errorf("failed to get devices: %w", err)
	}
	for _, d := range devices {
		if d.ID == name || strings.EqualFold(d.Name, name) {
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", moodErrors.ErrDeviceNotFound, name)
}

func newClassifier() (classifier.Classifier, error) {
	switch cfg.Classifier.Kind {
	case "", "none":
		return nil, nil
	case "script":
		s, err := classifier.LoadScript(cfg.Classifier.Script, cfg.Classifier.Loop)
		if err != nil {
			return nil, fmt.Errorf("failed to load classifier script: %w", err)
		}
		return s, nil
	case "http":
		return classifier.NewHTTP(cfg.Classifier.Endpoint, classifierTimeout), nil
	default:
		return nil, fmt.Errorf("unknown classifier: %s", cfg.Classifier.Kind)
	}
}
