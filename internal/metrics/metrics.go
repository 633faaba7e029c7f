// Package metrics exposes Prometheus instrumentation for the event scan.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "oppositions"

// Metrics holds the counters, histograms and gauges updated by a scan.
type Metrics struct {
	SamplesEvaluated *prometheus.CounterVec // labels: pass
	ProviderErrors   prometheus.Counter
	EventsRecorded   *prometheus.CounterVec // labels: kind, reported={true,false}
	SelectedBodies   prometheus.Gauge
	ScanRunning      prometheus.Gauge

	StepDuration *prometheus.HistogramVec // labels: pass
	PassDuration *prometheus.GaugeVec     // labels: pass
}

func newMetrics() *Metrics {
	return &Metrics{
		SamplesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_evaluated_total",
			Help:      "Ephemeris samples computed, by scan pass.",
		}, []string{"pass"}),
		ProviderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Ephemeris evaluations that failed.",
		}),
		EventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_recorded_total",
			Help:      "Detected events by kind and whether they were reported.",
		}, []string{"kind", "reported"}),
		SelectedBodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_bodies",
			Help:      "Bodies selected by the coarse pass.",
		}),
		ScanRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_running",
			Help:      "1 while a scan pass is active.",
		}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time to evaluate every candidate body at one step.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"pass"}),
		PassDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of the most recent run of each pass.",
		}, []string{"pass"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SamplesEvaluated,
		m.ProviderErrors,
		m.EventsRecorded,
		m.SelectedBodies,
		m.ScanRunning,
		m.StepDuration,
		m.PassDuration,
	}
}

// NewMetrics creates all scan metrics and registers them with reg.
// A nil reg uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
