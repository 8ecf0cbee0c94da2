// Package telemetry exposes playback counters in Prometheus format.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tessro/moodplay/internal/core"
)

const namespace = "moodplay"

// Metrics is a per-process registry. It satisfies engine.Observer.
type Metrics struct {
	registry *prometheus.Registry

	moodSwitches      *prometheus.CounterVec
	classifications   *prometheus.CounterVec
	playRequests      prometheus.Counter
	playRejections    prometheus.Counter
	staleResolutions  prometheus.Counter
	trackAdvances     *prometheus.CounterVec
	classifierFailure prometheus.Counter
	volume            prometheus.Gauge
	playing           prometheus.Gauge
	listening         prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moodSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_switches_total",
			Help:      "Committed mood switches by mood.",
		}, []string{"mood"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classifier readings by resulting mood.",
		}, []string{"mood"}),
		playRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "play_requests_total",
			Help:      "Start requests issued to the media output.",
		}),
		playRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "play_rejections_total",
			Help:      "Start requests rejected by the media output.",
		}),
		staleResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_resolutions_total",
			Help:      "Start resolutions dropped because a newer request superseded them.",
		}),
		trackAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_advances_total",
			Help:      "Track changes within a playlist by reason.",
		}, []string{"reason"}),
		classifierFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_failures_total",
			Help:      "Times the classifier became unavailable.",
		}),
		volume: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "volume",
			Help:      "Current output volume in [0,1].",
		}),
		playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playing",
			Help:      "1 while audio is playing.",
		}),
		listening: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listening",
			Help:      "1 while the classifier is running.",
		}),
	}

	m.registry.MustRegister(
		m.moodSwitches,
		m.classifications,
		m.playRequests,
		m.playRejections,
		m.staleResolutions,
		m.trackAdvances,
		m.classifierFailure,
		m.volume,
		m.playing,
		m.listening,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) MoodSwitched(mood core.Mood) {
	m.moodSwitches.WithLabelValues(mood.String()).Inc()
}

func (m *Metrics) TrackAdvanced(reason string) {
	m.trackAdvances.WithLabelValues(reason).Inc()
}

func (m *Metrics) PlayRequested() { m.playRequests.Inc() }

func (m *Metrics) PlayRejected() { m.playRejections.Inc() }

func (m *Metrics) StaleResolution() { m.staleResolutions.Inc() }

func (m *Metrics) PlayingChanged(playing bool) { m.playing.Set(boolGauge(playing)) }

func (m *Metrics) VolumeChanged(volume float64) { m.volume.Set(volume) }

// Classified counts one classifier reading.
func (m *Metrics) Classified(mood core.Mood) {
	m.classifications.WithLabelValues(mood.String()).Inc()
}

// ClassifierFailed counts a classifier dropping out.
func (m *Metrics) ClassifierFailed() { m.classifierFailure.Inc() }

// ListeningChanged tracks the listening flag.
func (m *Metrics) ListeningChanged(listening bool) { m.listening.Set(boolGauge(listening)) }

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
