package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rgehrsitz/isrmx/internal/domain"
)

// Metrics provides observability for calculations and the HTTP API.
type Metrics struct {
	// Calculation outcomes by result and ISR bracket index
	CalculationOutcome *prometheus.CounterVec

	CalculationLatency prometheus.Histogram

	// HTTP requests by route pattern, method and status code
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	TableReloads *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers all isrmx metrics with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		CalculationOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isrmx_calculations_total",
			Help: "Total withholding calculations by outcome and ISR bracket",
		}, []string{"outcome", "bracket"}), // outcome: "ok", "invalid_income", "error"

		CalculationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "isrmx_calculation_duration_seconds",
			Help:    "Duration of a single withholding calculation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isrmx_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isrmx_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		TableReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isrmx_table_reloads_total",
			Help: "Fiscal table reload attempts by outcome",
		}, []string{"outcome"}),

		gatherer: reg,
	}
}

// ObserveCalculation records one Calculate call.
func (m *Metrics) ObserveCalculation(bracket string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrInvalidIncome):
		outcome = "invalid_income"
	case err != nil:
		outcome = "error"
	}
	m.CalculationOutcome.WithLabelValues(outcome, bracket).Inc()
	m.CalculationLatency.Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

// IncrementTableReload records a fiscal table reload attempt.
func (m *Metrics) IncrementTableReload(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.TableReloads.WithLabelValues("error").Inc()
		return
	}
	m.TableReloads.WithLabelValues("ok").Inc()
}

// Handler exposes the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
