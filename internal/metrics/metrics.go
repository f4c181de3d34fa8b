// Package metrics counts playback engine transitions for Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wavedj"

// Recorder holds the engine counters. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	crossfadesStarted   prometheus.Counter
	crossfadesCompleted *prometheus.CounterVec
	crossfadesAborted   *prometheus.CounterVec
	directTransitions   *prometheus.CounterVec
	corrections         *prometheus.CounterVec
	mediaCommands       *prometheus.CounterVec
	playDispatches      *prometheus.CounterVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		crossfadesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crossfades_started_total",
			Help:      "Crossfade sessions started.",
		}),
		crossfadesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crossfades_completed_total",
			Help:      "Crossfade sessions that swapped decks.",
		}, []string{"forced"}),
		crossfadesAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crossfades_aborted_total",
			Help:      "Crossfade sessions aborted, by reason.",
		}, []string{"reason"}),
		directTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "direct_transitions_total",
			Help:      "Track changes on the same deck without a crossfade.",
		}, []string{"cause"}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciler_corrections_total",
			Help:      "Divergences between intent and hardware repaired by the reconciler.",
		}, []string{"kind"}),
		mediaCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_commands_total",
			Help:      "Media session commands, by outcome.",
		}, []string{"action", "outcome"}),
		playDispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "play_dispatch_total",
			Help:      "Completed plays sent to sinks.",
		}, []string{"sink", "result"}),
	}
	r.registry.MustRegister(
		r.crossfadesStarted,
		r.crossfadesCompleted,
		r.crossfadesAborted,
		r.directTransitions,
		r.corrections,
		r.mediaCommands,
		r.playDispatches,
	)
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) CrossfadeStarted() {
	if r == nil {
		return
	}
	r.crossfadesStarted.Inc()
}

// CrossfadeCompleted counts a swap; forced is true when the safety timeout
// completed it.
func (r *Recorder) CrossfadeCompleted(forced bool) {
	if r == nil {
		return
	}
	r.crossfadesCompleted.WithLabelValues(strconv.FormatBool(forced)).Inc()
}

func (r *Recorder) CrossfadeAborted(reason string) {
	if r == nil {
		return
	}
	r.crossfadesAborted.WithLabelValues(reason).Inc()
}

func (r *Recorder) DirectTransition(cause string) {
	if r == nil {
		return
	}
	r.directTransitions.WithLabelValues(cause).Inc()
}

func (r *Recorder) ReconcilerCorrection(kind string) {
	if r == nil {
		return
	}
	r.corrections.WithLabelValues(kind).Inc()
}

func (r *Recorder) MediaCommand(action, outcome string) {
	if r == nil {
		return
	}
	r.mediaCommands.WithLabelValues(action, outcome).Inc()
}

// PlayDispatched implements scrobble.Observer.
func (r *Recorder) PlayDispatched(sink string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.playDispatches.WithLabelValues(sink, result).Inc()
}
