// Package observability provides Prometheus metrics for pipeline runs.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "team_form_lab"

// Metrics holds all Prometheus metrics for one pipeline process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Table metrics
	RowsRead    *prometheus.CounterVec
	RowsDropped *prometheus.CounterVec
	RowsWritten *prometheus.CounterVec

	// Stage metrics
	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	// Sink metrics
	StoreWriteDuration *prometheus.HistogramVec
	StoreWriteErrors   *prometheus.CounterVec
	ObjectsPublished   prometheus.Counter

	// Health
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics registers all metrics on reg. Passing a fresh registry keeps
// tests and repeated runs independent of the global default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		RowsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "rows_read_total",
			Help:      "Total number of rows read by table",
		}, []string{"table"}),
		RowsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "rows_dropped_total",
			Help:      "Total number of rows dropped by reason",
		}, []string{"reason"}),
		RowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "rows_written_total",
			Help:      "Total number of rows written by table",
		}, []string{"table"}),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of stage runs by status",
		}, []string{"stage", "status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"stage"}),

		StoreWriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_duration_seconds",
			Help:      "Store ReplaceAll duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store"}),
		StoreWriteErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_errors_total",
			Help:      "Total number of failed store writes",
		}, []string{"store"}),
		ObjectsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "objects_total",
			Help:      "Total number of files published to object storage",
		}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful pipeline run",
		}),
	}
}

// RecordRead adds n rows read from table.
func (m *Metrics) RecordRead(table string, n int) {
	if m == nil {
		return
	}
	m.RowsRead.WithLabelValues(table).Add(float64(n))
}

// RecordDropped adds n rows dropped for reason. Zero counts still create the series.
func (m *Metrics) RecordDropped(reason string, n int) {
	if m == nil {
		return
	}
	m.RowsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordWritten adds n rows written to table.
func (m *Metrics) RecordWritten(table string, n int) {
	if m == nil {
		return
	}
	m.RowsWritten.WithLabelValues(table).Add(float64(n))
}

// RecordStage records one stage run and its duration.
func (m *Metrics) RecordStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RunsTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordStoreWrite records one ReplaceAll against store.
func (m *Metrics) RecordStoreWrite(store string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreWriteDuration.WithLabelValues(store).Observe(d.Seconds())
	if err != nil {
		m.StoreWriteErrors.WithLabelValues(store).Inc()
	}
}

// RecordPublished counts one published object.
func (m *Metrics) RecordPublished() {
	if m == nil {
		return
	}
	m.ObjectsPublished.Inc()
}

// MarkSuccess sets the last-success gauge to at.
func (m *Metrics) MarkSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccessfulRun.Set(float64(at.Unix()))
}

// WriteTextfile writes everything in g to path in the text exposition format,
// for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
