package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for calculations and HTTP traffic.
type Metrics struct {
	Registry *prometheus.Registry

	calculationsTotal   *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	taxAssessed         *prometheus.CounterVec
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	receiptsStored      prometheus.Gauge
}

// New creates the collectors on a private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pajak"
	}

	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		calculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Total number of tax calculations",
			},
			[]string{"tax_type", "outcome"},
		),
		calculationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calculation_duration_seconds",
				Help:      "Tax calculation duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"tax_type"},
		),
		taxAssessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tax_assessed_rupiah_total",
				Help:      "Sum of computed tax amounts in rupiah",
			},
			[]string{"tax_type"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
		receiptsStored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "receipts_stored",
				Help:      "Number of receipts currently held in memory",
			},
		),
	}

	m.Registry.MustRegister(
		m.calculationsTotal,
		m.calculationDuration,
		m.taxAssessed,
		m.requestsTotal,
		m.requestDuration,
		m.receiptsStored,
	)

	return m
}

// ObserveCalculation records one calculation. A nil receiver is a no-op.
func (m *Metrics) ObserveCalculation(taxType, outcome string, seconds float64, tax int64) {
	if m == nil {
		return
	}
	m.calculationsTotal.WithLabelValues(taxType, outcome).Inc()
	m.calculationDuration.WithLabelValues(taxType).Observe(seconds)
	if tax > 0 {
		m.taxAssessed.WithLabelValues(taxType).Add(float64(tax))
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) SetReceiptsStored(n int) {
	if m == nil {
		return
	}
	m.receiptsStored.Set(float64(n))
}

// HTTPHandler exposes the registry in the Prometheus text format.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
