// Package metrics holds the Prometheus collectors for local persistence.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the snapshot store
type Metrics struct {
	// Posts snapshot
	PersistTotal     *prometheus.CounterVec
	PersistDuration  prometheus.Histogram
	DegradationLimit prometheus.Gauge
	SnapshotBytes    prometheus.Gauge
	SnapshotRecords  prometheus.Gauge
	StrippedRecords  prometheus.Gauge

	// Generic values
	ValueWritesTotal *prometheus.CounterVec

	// Backend
	BackendErrorsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PersistTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageshare_snapshot_persist_total",
				Help: "Posts snapshot persist calls by outcome",
			},
			[]string{"outcome"},
		),
		PersistDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pageshare_snapshot_persist_duration_seconds",
				Help:    "Time spent persisting the posts snapshot",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		DegradationLimit: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pageshare_snapshot_degradation_limit",
				Help: "Record limit of the last degraded snapshot (0 when stored undegraded)",
			},
		),
		SnapshotBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pageshare_snapshot_bytes",
				Help: "Serialized size of the last stored posts snapshot",
			},
		),
		SnapshotRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pageshare_snapshot_records",
				Help: "Record count of the last stored posts snapshot",
			},
		),
		StrippedRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pageshare_snapshot_stripped_records",
				Help: "Records stored without attachments in the last snapshot",
			},
		),
		ValueWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageshare_value_writes_total",
				Help: "Generic value writes by outcome",
			},
			[]string{"outcome"},
		),
		BackendErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pageshare_backend_errors_total",
				Help: "Backend errors by operation and kind",
			},
			[]string{"op", "kind"},
		),
	}
}

// Snapshot describes one persist call for ObservePersist.
type Snapshot struct {
	Outcome  string
	Limit    int
	Bytes    int
	Records  int
	Stripped int
	Stored   bool
}

// ObservePersist records one persist call. Safe on a nil receiver.
func (m *Metrics) ObservePersist(s Snapshot, took time.Duration) {
	if m == nil {
		return
	}
	m.PersistTotal.WithLabelValues(s.Outcome).Inc()
	m.PersistDuration.Observe(took.Seconds())
	if !s.Stored {
		return
	}
	m.DegradationLimit.Set(float64(s.Limit))
	m.SnapshotBytes.Set(float64(s.Bytes))
	m.SnapshotRecords.Set(float64(s.Records))
	m.StrippedRecords.Set(float64(s.Stripped))
}

// ObserveValueWrite records a generic value write. Safe on a nil receiver.
func (m *Metrics) ObserveValueWrite(outcome string) {
	if m == nil {
		return
	}
	m.ValueWritesTotal.WithLabelValues(outcome).Inc()
}

// ObserveBackendError records a failed backend call. Safe on a nil receiver.
func (m *Metrics) ObserveBackendError(op, kind string) {
	if m == nil {
		return
	}
	m.BackendErrorsTotal.WithLabelValues(op, kind).Inc()
}

// ObserveSnapshot sets the size gauges from the snapshot currently stored. Safe on a nil receiver.
func (m *Metrics) ObserveSnapshot(records, bytes int) {
	if m == nil {
		return
	}
	m.SnapshotRecords.Set(float64(records))
	m.SnapshotBytes.Set(float64(bytes))
}
