package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCalculation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCalculation("2", time.Millisecond, nil)
	m.ObserveCalculation("2", time.Millisecond, nil)
	m.ObserveCalculation("-1", time.Microsecond, fmt.Errorf("%w: -1", domain.ErrInvalidIncome))
	m.ObserveCalculation("3", time.Microsecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CalculationOutcome.WithLabelValues("ok", "2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationOutcome.WithLabelValues("invalid_income", "-1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationOutcome.WithLabelValues("error", "3")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CalculationLatency))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "isrmx_calculation_duration_seconds_count 4\n")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCalculation("0", time.Millisecond, nil)
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.IncrementTableReload(nil)
	})
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
		New(nil)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("/api/taxcalculations/calculate", http.MethodPost, http.StatusOK, 2*time.Millisecond)
	m.IncrementTableReload(nil)
	m.IncrementTableReload(errors.New("bad file"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `isrmx_http_requests_total{method="POST",route="/api/taxcalculations/calculate",status="200"} 1`)
	assert.Contains(t, body, `isrmx_table_reloads_total{outcome="error"} 1`)
	assert.Contains(t, body, `isrmx_table_reloads_total{outcome="ok"} 1`)
}
