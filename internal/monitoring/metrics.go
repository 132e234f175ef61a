package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sentilens"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// PredictionMetrics records sentiment service telemetry. It implements
// sentiment.Observer.
type PredictionMetrics struct {
	Predictions         *prometheus.CounterVec
	Failures            *prometheus.CounterVec
	PredictionDuration  prometheus.Histogram
	Initializations     *prometheus.CounterVec
	InitDuration        prometheus.Histogram
	AttributionDegraded prometheus.Counter
	SlowPredictions     prometheus.Counter
	BackendHealthy      prometheus.Gauge
}

func NewPredictionMetrics(reg prometheus.Registerer) *PredictionMetrics {
	m := &PredictionMetrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of successful predictions, by sentiment label.",
		}, []string{"label"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Total number of failed predictions, by error kind.",
		}, []string{"kind"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Duration of successful predictions in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}),
		Initializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_initializations_total",
			Help:      "Total number of backend load attempts, by success.",
		}, []string{"success"}),
		InitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_initialization_duration_seconds",
			Help:      "Duration of backend loads in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		AttributionDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attribution_degraded_total",
			Help:      "Total number of attention attributions that fell back to empty.",
		}),
		SlowPredictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slow_predictions_total",
			Help:      "Total number of predictions slower than the processing budget.",
		}),
		BackendHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_healthy",
			Help:      "1 when the last health check passed, 0 otherwise.",
		}),
	}

	reg.MustRegister(m.Predictions, m.Failures, m.PredictionDuration,
		m.Initializations, m.InitDuration, m.AttributionDegraded,
		m.SlowPredictions, m.BackendHealthy)
	return m
}

func (m *PredictionMetrics) ObservePrediction(label string, seconds float64) {
	m.Predictions.WithLabelValues(label).Inc()
	m.PredictionDuration.Observe(seconds)
}

func (m *PredictionMetrics) ObserveFailure(kind string) {
	m.Failures.WithLabelValues(kind).Inc()
}

func (m *PredictionMetrics) ObserveInitialization(success bool, seconds float64) {
	m.Initializations.WithLabelValues(strconv.FormatBool(success)).Inc()
	m.InitDuration.Observe(seconds)
}

func (m *PredictionMetrics) ObserveAttributionDegraded() {
	m.AttributionDegraded.Inc()
}

func (m *PredictionMetrics) ObserveSlowPrediction() {
	m.SlowPredictions.Inc()
}
