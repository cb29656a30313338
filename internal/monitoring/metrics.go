// Package monitoring exposes Prometheus metrics for cluster runs and the HTTP API.
package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sells-group/water-cli/internal/model"
)

const namespace = "water"

// Run outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the counters and histograms for the service.
type Metrics struct {
	ClusterRuns        *prometheus.CounterVec   // labels: selection, outcome={ok,invalid,error}
	ClusterRunDuration *prometheus.HistogramVec // labels: selection
	ClusterRows        *prometheus.GaugeVec     // labels: selection
	HTTPRequests       *prometheus.CounterVec   // labels: route, code
	HTTPDuration       *prometheus.HistogramVec // labels: route
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClusterRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_runs_total",
			Help:      "Cluster runs by selection and outcome.",
		}, []string{"selection", "outcome"}),
		ClusterRunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_run_duration_seconds",
			Help:      "Duration of one standardize, partition and assign run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"selection"}),
		ClusterRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_rows",
			Help:      "Rows fitted by the latest run of each selection.",
		}, []string{"selection"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// NewWithRegistry creates metrics on a fresh registry, for servers and tests
// that must not share the default registry.
func NewWithRegistry() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

// ObserveRun records one finished cluster run.
func (m *Metrics) ObserveRun(selection string, rows int, seconds float64, err error) {
	m.ClusterRuns.WithLabelValues(selection, Outcome(err)).Inc()
	m.ClusterRunDuration.WithLabelValues(selection).Observe(seconds)
	if err == nil {
		m.ClusterRows.WithLabelValues(selection).Set(float64(rows))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, seconds float64) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// Outcome classifies a run error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case model.IsValidation(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
