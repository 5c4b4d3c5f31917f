// Package metrics exposes Prometheus counters for the input pipeline.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	Events               *prometheus.CounterVec
	Decisions            *prometheus.CounterVec
	Remapped             *prometheus.CounterVec
	InjectionFailures    prometheus.Counter
	KeysBlocked          prometheus.Counter
	SignaturesLearned    prometheus.Counter
	HandlerPanics        prometheus.Counter
	NotificationsDropped prometheus.CounterFunc
}

// New registers the counters on a fresh registry. dropped, if non-nil,
// reports notifications discarded by a full bus.
func New(dropped func() uint64) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "input_events_total",
			Help:      "Decoded input events by kind.",
		}, []string{"kind"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "decisions_total",
			Help:      "Hook decisions by path and verdict.",
		}, []string{"path", "decision"}),
		Remapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "remapped_presses_total",
			Help:      "Button presses replaced with keystrokes, by profile.",
		}, []string{"profile"}),
		InjectionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "injection_failures_total",
			Help:      "Keystroke sequences that could not be injected.",
		}),
		KeysBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "keys_blocked_total",
			Help:      "Keys suppressed by the keyboard guard.",
		}),
		SignaturesLearned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "signatures_learned_total",
			Help:      "Signatures added in learning mode.",
		}),
		HandlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "handler_panics_total",
			Help:      "Hook handler panics recovered as pass-through.",
		}),
	}
	reg.MustRegister(m.Events, m.Decisions, m.Remapped, m.InjectionFailures, m.KeysBlocked, m.SignaturesLearned, m.HandlerPanics)

	if dropped != nil {
		m.NotificationsDropped = prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "gamemode",
			Name:      "notifications_dropped_total",
			Help:      "Notifications discarded because the bus was full.",
		}, func() float64 { return float64(dropped()) })
		reg.MustRegister(m.NotificationsDropped)
	}
	return m
}

// Registry returns the registry the counters live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Event(kind string) {
	if m != nil {
		m.Events.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Decision(path, decision string) {
	if m != nil {
		m.Decisions.WithLabelValues(path, decision).Inc()
	}
}

func (m *Metrics) Remap(profile string) {
	if m != nil {
		m.Remapped.WithLabelValues(profile).Inc()
	}
}

func (m *Metrics) InjectionFailed() {
	if m != nil {
		m.InjectionFailures.Inc()
	}
}

func (m *Metrics) KeyBlocked() {
	if m != nil {
		m.KeysBlocked.Inc()
	}
}

func (m *Metrics) Learned() {
	if m != nil {
		m.SignaturesLearned.Inc()
	}
}

func (m *Metrics) Panicked() {
	if m != nil {
		m.HandlerPanics.Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
