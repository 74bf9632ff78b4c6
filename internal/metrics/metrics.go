// Package metrics records run-level Prometheus metrics for an enrichment run
// and pushes them to a Pushgateway when one is configured. A nil *Recorder is
// valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Chunk outcomes used as the "outcome" label of enrichr_chunks_total.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// DefaultJob is the Pushgateway job name used when none is configured.
const DefaultJob = "enrichr"

// ErrNoPushURL is returned by Push when no Pushgateway URL is configured.
var ErrNoPushURL = errors.New("pushgateway URL is not set")

// Recorder holds the collectors of one run in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	chunks          *prometheus.CounterVec
	rowsEnriched    prometheus.Counter
	staleKeys       prometheus.Counter
	persistFailures prometheus.Counter
	lookupDuration  *prometheus.HistogramVec
	rowsRemaining   prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry. The profile label is
// attached to every series so runs of different profiles can share a
// Pushgateway group.
func NewRecorder(profile string) *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	labels := prometheus.Labels{"profile": profile}
	r := &Recorder{
		registry: registry,
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "enrichr_chunks_total",
			Help:        "Chunks completed, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		rowsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "enrichr_rows_enriched_total",
			Help:        "Rows that received a lookup result.",
			ConstLabels: labels,
		}),
		staleKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "enrichr_stale_keys_total",
			Help:        "Result keys that matched no unprocessed row.",
			ConstLabels: labels,
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "enrichr_persist_failures_total",
			Help:        "Checkpoint writes that failed.",
			ConstLabels: labels,
		}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "enrichr_lookup_duration_seconds",
			Help:        "Duration of chunk lookups.",
			Buckets:     prometheus.ExponentialBuckets(0.5, 2, 10), //nolint:mnd // 0.5s .. ~4m
			ConstLabels: labels,
		}, []string{"outcome"}),
		rowsRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "enrichr_rows_remaining",
			Help:        "Rows still unprocessed at the end of the run.",
			ConstLabels: labels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "enrichr_last_run_timestamp_seconds",
			Help:        "Unix time the last run finished.",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		r.chunks,
		r.rowsEnriched,
		r.staleKeys,
		r.persistFailures,
		r.lookupDuration,
		r.rowsRemaining,
		r.lastSuccess,
	)
	return r
}

// Registry returns the Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ChunkCompleted records one chunk outcome and its lookup duration.
func (r *Recorder) ChunkCompleted(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.chunks.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCancelled {
		r.lookupDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// RowsEnriched adds n enriched rows.
func (r *Recorder) RowsEnriched(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rowsEnriched.Add(float64(n))
}

// StaleKeys adds n ignored result keys.
func (r *Recorder) StaleKeys(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.staleKeys.Add(float64(n))
}

// PersistFailed counts one failed checkpoint write.
func (r *Recorder) PersistFailed() {
	if r == nil {
		return
	}
	r.persistFailures.Inc()
}

// RunFinished records the rows left unprocessed and the finish time.
func (r *Recorder) RunFinished(remaining int, at time.Time) {
	if r == nil {
		return
	}
	r.rowsRemaining.Set(float64(remaining))
	r.lastSuccess.Set(float64(at.Unix()))
}

// Push sends every collected series to the Pushgateway at url, replacing the
// job's previous group.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil {
		return nil
	}
	if url == "" {
		return ErrNoPushURL
	}
	if job == "" {
		job = DefaultJob
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
