// Package metrics provides Prometheus instrumentation for prediction calls,
// batch runs and the prediction log.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// Metrics contains the application's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	providerCallsTotal   *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec
	batchRowsTotal       *prometheus.CounterVec
	predictionsTotal     *prometheus.CounterVec
	logEntries           prometheus.Gauge
}

// New creates and registers the metrics on registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.providerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eggai_provider_calls_total",
			Help: "Total number of prediction provider calls",
		},
		[]string{"operation", "status"}, // status: success, error, malformed, canceled
	)

	m.providerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "eggai_provider_call_duration_seconds",
			Help: "Time taken by prediction provider calls",
			// 100ms to ~100s
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"operation"},
	)

	m.batchRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eggai_batch_rows_total",
			Help: "Total number of batch rows processed by outcome label",
		},
		[]string{"label"},
	)

	m.predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eggai_log_predictions_total",
			Help: "Total number of single-item analyses recorded in the prediction log",
		},
		[]string{"source", "label"},
	)

	m.logEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eggai_log_entries",
		Help: "Current number of entries in the session prediction log",
	})
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.providerCallsTotal.Describe(ch)
	m.providerCallDuration.Describe(ch)
	m.batchRowsTotal.Describe(ch)
	m.predictionsTotal.Describe(ch)
	m.logEntries.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.providerCallsTotal.Collect(ch)
	m.providerCallDuration.Collect(ch)
	m.batchRowsTotal.Collect(ch)
	m.predictionsTotal.Collect(ch)
	m.logEntries.Collect(ch)
}

// ObserveCall records one provider call.
func (m *Metrics) ObserveCall(operation, status string, elapsed time.Duration) {
	m.providerCallsTotal.WithLabelValues(operation, status).Inc()
	m.providerCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveBatchRow records one settled batch row.
func (m *Metrics) ObserveBatchRow(label model.Label) {
	m.batchRowsTotal.WithLabelValues(string(label)).Inc()
}

// ObserveLogEntry records an appended log entry and the resulting log size.
func (m *Metrics) ObserveLogEntry(entry model.LogEntry, size int) {
	m.predictionsTotal.WithLabelValues(string(entry.Source), string(entry.Prediction)).Inc()
	m.logEntries.Set(float64(size))
}

// ObserveLogCleared resets the log size gauge.
func (m *Metrics) ObserveLogCleared() {
	m.logEntries.Set(0)
}
