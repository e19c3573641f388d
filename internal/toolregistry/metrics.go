package toolregistry

import (
	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for tool invocation:
// promauto-registered CounterVec/HistogramVec keyed by label.
type Metrics struct {
	CallsTotal      *prometheus.CounterVec
	CallDuration    *prometheus.HistogramVec
	RegisteredTools prometheus.Gauge
}

// NewMetrics creates and registers the tool-registry metrics with reg.
// A nil reg returns metrics backed by a private, unregistered registry,
// so tests and embedders who skip metrics wiring never hit a
// duplicate-registration panic.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		CallsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mcpcore",
				Subsystem: "tools",
				Name:      "calls_total",
				Help:      "Total number of tool invocations",
			},
			[]string{"tool", "outcome"}, // outcome=success|failure
		),
		CallDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mcpcore",
				Subsystem: "tools",
				Name:      "call_duration_seconds",
				Help:      "Tool execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		RegisteredTools: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mcpcore",
				Subsystem: "tools",
				Name:      "registered",
				Help:      "Number of tools currently registered",
			},
		),
	}
}

// digest computes a cheap change-detection hash over a tool result.
func digest(text string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(text)
	return h.Sum64()
}
