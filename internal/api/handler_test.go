package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/config"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/rgehrsitz/isrmx/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type memoryRepository struct {
	mu      sync.Mutex
	records []domain.TaxRecord
	failAll error
}

func (m *memoryRepository) Save(_ context.Context, result domain.TaxResult) (domain.TaxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return domain.TaxRecord{}, m.failAll
	}
	now := time.Now().UTC()
	rec := domain.TaxRecord{ID: uuid.New(), Result: result, CreatedAt: now, UpdatedAt: now}
	m.records = append([]domain.TaxRecord{rec}, m.records...)
	return rec, nil
}

func (m *memoryRepository) Get(_ context.Context, id uuid.UUID) (domain.TaxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.TaxRecord{}, domain.ErrNotFound
}

func (m *memoryRepository) List(context.Context) ([]domain.TaxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	return append([]domain.TaxRecord(nil), m.records...), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type HandlerSuite struct {
	suite.Suite
	repo    *memoryRepository
	metrics *metrics.Metrics
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	tables, err := config.NewTablesParser().LoadDefault()
	s.Require().NoError(err)

	s.metrics = metrics.New(prometheus.NewRegistry())
	calc, err := calculation.NewCalculator(tables, calculation.WithObserver(s.metrics))
	s.Require().NoError(err)

	s.repo = &memoryRepository{}
	s.router = chi.NewRouter()
	New(calc, s.repo, nil, s.metrics).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *HandlerSuite) TestCalculate() {
	for _, body := range []string{`{"grossSalary": "10000.00"}`, `{"grossSalary": 10000}`} {
		w := s.do(http.MethodPost, "/api/taxcalculations/calculate", body)
		s.Require().Equal(http.StatusOK, w.Code, body)
		s.Equal("application/json", w.Header().Get("Content-Type"))

		var got domain.TaxResult
		s.decode(w, &got)
		s.Equal("770.901872", got.TotalISR.String())
		s.Equal("237.5", got.Contribution.String())
		s.Equal("8991.598128", got.NetIncome.String())
		s.Equal(2024, got.FiscalYear)
	}
	s.Empty(s.repo.records, "calculate must not persist")
}

func (s *HandlerSuite) TestCalculate_BadRequests() {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"grossSalary":`, "invalid request body"},
		{"not a number", `{"grossSalary": "ten"}`, "invalid request body"},
		{"missing field", `{}`, "grossSalary is required"},
		{"negative", `{"grossSalary": "-1"}`, "invalid income"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/api/taxcalculations/calculate", tt.body)
			s.Equal(http.StatusBadRequest, w.Code)

			var resp errorResponse
			s.decode(w, &resp)
			s.Contains(resp.Error, tt.want)
		})
	}
}

func (s *HandlerSuite) TestCreateGetListDelete() {
	w := s.do(http.MethodPost, "/api/taxcalculations", `{"grossSalary": "10000"}`)
	s.Require().Equal(http.StatusCreated, w.Code)

	var created recordResponse
	s.decode(w, &created)
	s.NotEqual(uuid.Nil, created.ID)
	s.Equal("/api/taxcalculations/"+created.ID.String(), w.Header().Get("Location"))
	s.Equal("770.901872", created.TotalISR.String())

	w = s.do(http.MethodGet, w.Header().Get("Location"), "")
	s.Require().Equal(http.StatusOK, w.Code)
	var fetched recordResponse
	s.decode(w, &fetched)
	s.Equal(created.ID, fetched.ID)
	s.True(fetched.TaxResult.Equal(created.TaxResult))

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/taxcalculations", `{"grossSalary": 0}`).Code)
	w = s.do(http.MethodGet, "/api/taxcalculations", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list []recordResponse
	s.decode(w, &list)
	s.Require().Len(list, 2)
	s.Equal("407.02", list[0].NetIncome.String())

	path := "/api/taxcalculations/" + created.ID.String()
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, path, "").Code)
}

func (s *HandlerSuite) TestList_EmptyIsArray() {
	w := s.do(http.MethodGet, "/api/taxcalculations", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *HandlerSuite) TestGet_InvalidID() {
	w := s.do(http.MethodGet, "/api/taxcalculations/not-a-uuid", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestRepositoryFailureIsInternal() {
	s.repo.failAll = errors.New("disk full")

	w := s.do(http.MethodPost, "/api/taxcalculations", `{"grossSalary": "10000"}`)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"error":"internal server error"}`, w.Body.String())

	s.Equal(http.StatusInternalServerError, s.do(http.MethodGet, "/api/taxcalculations", "").Code)
}

func (s *HandlerSuite) TestTables() {
	w := s.do(http.MethodGet, "/api/tables", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var got domain.FiscalTables
	s.decode(w, &got)
	s.Equal(2024, got.Year)
	s.Len(got.ISR, 11)
	s.True(got.ISR[len(got.ISR)-1].IsOpenEnded())
	s.Equal("81427.5", got.Contribution.MaxContributableBase.String())
}

func (s *HandlerSuite) TestMetricsEndpoint() {
	s.do(http.MethodPost, "/api/taxcalculations/calculate", `{"grossSalary": "10000"}`)

	w := s.do(http.MethodGet, "/metrics", "")
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, `isrmx_calculations_total{bracket="2",outcome="ok"} 1`)
	s.Contains(body, `route="/api/taxcalculations/calculate"`)
}

func TestNew_DefaultsLogger(t *testing.T) {
	h := New(nil, nil, nil, nil)
	require.NotNil(t, h.logger)
	assert.IsType(t, calculation.NopLogger{}, h.logger)
}
