package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector defines the interface for collecting auction metrics
type Collector interface {
	RecordCommand(command, outcome string)
	RecordAutoResolution(outcome string)
	RecordSale(price int64)
	RecordPublish(sink string, success bool, duration time.Duration)
	RecordCoalesced(n int)
}

// NoOpCollector is a no-op implementation for when metrics aren't needed
type NoOpCollector struct{}

func (NoOpCollector) RecordCommand(command, outcome string)                           {}
func (NoOpCollector) RecordAutoResolution(outcome string)                             {}
func (NoOpCollector) RecordSale(price int64)                                          {}
func (NoOpCollector) RecordPublish(sink string, success bool, duration time.Duration) {}
func (NoOpCollector) RecordCoalesced(n int)                                           {}

// PrometheusMetrics implements Collector using Prometheus
type PrometheusMetrics struct {
	commands        *prometheus.CounterVec
	autoResolutions *prometheus.CounterVec
	sales           prometheus.Counter
	salesValue      prometheus.Counter
	publishes       *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
	coalesced       prometheus.Counter
}

// NewPrometheusMetrics creates the collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auction",
			Name:      "commands_total",
			Help:      "Engine commands by name and outcome.",
		}, []string{"command", "outcome"}),
		autoResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auction",
			Name:      "auto_resolutions_total",
			Help:      "Lots resolved by countdown expiry.",
		}, []string{"outcome"}),
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auction",
			Name:      "sales_total",
			Help:      "Players sold.",
		}),
		salesValue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auction",
			Name:      "sales_value_total",
			Help:      "Sum of sold prices.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auction",
			Name:      "publishes_total",
			Help:      "Snapshot publishes by sink and status.",
		}, []string{"sink", "status"}),
		publishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "auction",
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing one envelope.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"sink"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auction",
			Name:      "snapshots_coalesced_total",
			Help:      "Snapshots dropped in favour of a newer one before publishing.",
		}),
	}
	reg.MustRegister(m.commands, m.autoResolutions, m.sales, m.salesValue,
		m.publishes, m.publishDuration, m.coalesced)
	return m
}

func (m *PrometheusMetrics) RecordCommand(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *PrometheusMetrics) RecordAutoResolution(outcome string) {
	m.autoResolutions.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) RecordSale(price int64) {
	m.sales.Inc()
	m.salesValue.Add(float64(price))
}

func (m *PrometheusMetrics) RecordPublish(sink string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.publishes.WithLabelValues(sink, status).Inc()
	m.publishDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordCoalesced(n int) {
	if n > 0 {
		m.coalesced.Add(float64(n))
	}
}
