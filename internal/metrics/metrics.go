package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Engine labels.
const (
	EngineIndicators = "indicators"
	EngineRisk       = "risk"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	computationsTotal   *prometheus.CounterVec
	computationDuration *prometheus.HistogramVec
	degradedTotal       *prometheus.CounterVec
	fetchFailures       *prometheus.CounterVec
	barsFetched         *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_computations_total",
			Help: "Total number of engine computations by outcome",
		},
		[]string{"engine", "status"},
	)
	r.computationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quant_computation_duration_seconds",
			Help:    "End-to-end computation duration including data fetch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"engine"},
	)
	r.degradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_degraded_total",
			Help: "Computations that succeeded on degraded input",
		},
		[]string{"engine", "reason"},
	)
	r.fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quant_fetch_failures_total",
			Help: "Failed bar history fetches",
		},
		[]string{"source"},
	)
	r.barsFetched = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quant_bars_fetched",
			Help:    "Number of bars returned per history fetch",
			Buckets: []float64{0, 30, 100, 200, 252, 500, 1000},
		},
		[]string{"source"},
	)

	reg.MustRegister(r.computationsTotal)
	reg.MustRegister(r.computationDuration)
	reg.MustRegister(r.degradedTotal)
	reg.MustRegister(r.fetchFailures)
	reg.MustRegister(r.barsFetched)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordComputation records one engine run. status is "ok" or an error code.
func (r *Registry) RecordComputation(engine, status string, duration float64) {
	r.computationsTotal.WithLabelValues(engine, status).Inc()
	r.computationDuration.WithLabelValues(engine).Observe(duration)
}

// RecordDegraded records a result computed on degraded input.
func (r *Registry) RecordDegraded(engine, reason string) {
	r.degradedTotal.WithLabelValues(engine, reason).Inc()
}

// RecordFetch records a history fetch outcome.
func (r *Registry) RecordFetch(source string, bars int, err error) {
	if err != nil {
		r.fetchFailures.WithLabelValues(source).Inc()
		return
	}
	r.barsFetched.WithLabelValues(source).Observe(float64(bars))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
