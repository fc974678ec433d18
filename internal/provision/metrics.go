package provision

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run provisioning counters on a private registry.
// The CLI is one-shot, so instead of an exposition endpoint the registry is
// flushed to a node_exporter textfile at the end of the run.
type Metrics struct {
	registry *prometheus.Registry

	layersTotal   *prometheus.CounterVec
	layerDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

// NewMetrics builds a Metrics with all collectors registered.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.layersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "provision",
			Name:      "layers_total",
			Help:      "Layer install outcomes by status",
		},
		[]string{"layer", "status"},
	)

	m.layerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synthctl",
			Subsystem: "provision",
			Name:      "layer_duration_seconds",
			Help:      "Duration of layer installs in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"layer"},
	)

	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synthctl",
			Subsystem: "provision",
			Name:      "runs_total",
			Help:      "Provisioning runs by result",
		},
		[]string{"result"},
	)

	m.lastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "synthctl",
			Subsystem: "provision",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last provisioning run",
		},
	)

	m.registry.MustRegister(m.layersTotal, m.layerDuration, m.runsTotal, m.lastRun)
	return m
}

// ObserveLayer records one layer outcome.
func (m *Metrics) ObserveLayer(o Outcome) {
	m.layersTotal.WithLabelValues(o.Layer.String(), o.Status.String()).Inc()
	m.layerDuration.WithLabelValues(o.Layer.String()).Observe(o.Duration.Seconds())
}

// CountRun records the terminal result of one run.
func (m *Metrics) CountRun(result string) {
	m.runsTotal.WithLabelValues(result).Inc()
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile flushes the registry to path in the node_exporter textfile
// collector format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
