package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// closure-signal pipeline.
type Metrics struct {
	Evaluations      prometheus.Counter
	SignalFailures   prometheus.Counter // pipeline failures substituted with the empty signal
	PayloadErrors    prometheus.Counter // non-empty payloads with zero alert documents
	RefreshRunning   prometheus.Gauge
	ActiveWarning    prometheus.Gauge
	AdvisoryState    *prometheus.GaugeVec // label: state; 1 for the current advisory, 0 otherwise
	EvaluationsSent  prometheus.Counter   // evaluations published to the sink topic
	PublishErrors    prometheus.Counter

	DocumentsExtracted prometheus.Histogram
	AlertRecords       prometheus.Histogram

	FetchDuration *prometheus.HistogramVec // label: upstream={warnings,status}
	FetchErrors   *prometheus.CounterVec   // label: upstream={warnings,status}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Evaluations,
		m.SignalFailures,
		m.PayloadErrors,
		m.RefreshRunning,
		m.ActiveWarning,
		m.AdvisoryState,
		m.EvaluationsSent,
		m.PublishErrors,
		m.DocumentsExtracted,
		m.AlertRecords,
		m.FetchDuration,
		m.FetchErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "park_status",
			Name:      "evaluations_total",
			Help:      "Total status evaluations performed.",
		}),
		SignalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "park_status",
			Name:      "signal_failures_total",
			Help:      "Predictive pipeline failures replaced by the empty signal.",
		}),
		PayloadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "park_status",
			Name:      "payload_errors_total",
			Help:      "Non-empty warning payloads containing no alert documents.",
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "park_status",
			Name:      "refresh_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		ActiveWarning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "park_status",
			Name:      "active_warning",
			Help:      "1 when the latest signal has an active relevant warning.",
		}),
		AdvisoryState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "park_status",
			Name:      "advisory_state",
			Help:      "Current advisory state, 1 for the active state and 0 for the rest.",
		}, []string{"state"}),
		EvaluationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "park_status",
			Name:      "evaluations_sent_total",
			Help:      "Evaluations published to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "park_status",
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish an evaluation.",
		}),
		DocumentsExtracted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "park_status",
			Name:      "documents_extracted",
			Help:      "Alert documents extracted per warning payload.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		AlertRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "park_status",
			Name:      "alert_records",
			Help:      "Alert records parsed per evaluation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "park_status",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration by feed.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "park_status",
			Name:      "fetch_errors_total",
			Help:      "Upstream fetch failures by feed.",
		}, []string{"upstream"}),
	}
}
