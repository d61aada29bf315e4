// Package metrics provides Prometheus metrics instrumentation for the
// cditrend run pipeline.
//
// Metrics exposed:
//   - cditrend_fetch_seconds: Histogram of rate fetch duration
//   - cditrend_chart_render_seconds: Histogram of chart render duration
//   - cditrend_samples_written_total: Counter of samples appended to the series
//   - cditrend_sample_rate: Gauge of the most recently written sample rate
//   - cditrend_errors_total: Counter of errors by component and reason
//
// They are served on the /metrics endpoint when the observability
// listener is enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a cditrend run.
type Metrics struct {
	FetchSeconds        prometheus.Histogram
	ChartRenderSeconds  prometheus.Histogram
	SamplesWrittenTotal prometheus.Counter
	SampleRate          prometheus.Gauge
	ErrorsTotal         *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
// The series label identifies the series being sampled.
func New(seriesName string) *Metrics {
	return &Metrics{
		FetchSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "cditrend_fetch_seconds",
			Help:        "Time spent fetching the indicator rate",
			ConstLabels: prometheus.Labels{"series": seriesName},
			Buckets:     prometheus.DefBuckets,
		}),

		ChartRenderSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "cditrend_chart_render_seconds",
			Help:        "Time spent rendering the chart image",
			ConstLabels: prometheus.Labels{"series": seriesName},
			Buckets:     prometheus.DefBuckets,
		}),

		SamplesWrittenTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "cditrend_samples_written_total",
			Help:        "Number of samples appended to the series store",
			ConstLabels: prometheus.Labels{"series": seriesName},
		}),

		SampleRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "cditrend_sample_rate",
			Help:        "Rate of the most recently written sample",
			ConstLabels: prometheus.Labels{"series": seriesName},
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "cditrend_errors_total",
			Help:        "Total number of errors by component and reason",
			ConstLabels: prometheus.Labels{"series": seriesName},
		}, []string{"component", "reason"}),
	}
}

// RecordFetch records the time spent fetching the rate.
func (m *Metrics) RecordFetch(seconds float64) {
	m.FetchSeconds.Observe(seconds)
}

// RecordRender records the time spent rendering the chart.
func (m *Metrics) RecordRender(seconds float64) {
	m.ChartRenderSeconds.Observe(seconds)
}

// RecordSample counts one written sample and tracks its rate.
func (m *Metrics) RecordSample(rate float64) {
	m.SamplesWrittenTotal.Inc()
	m.SampleRate.Set(rate)
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
