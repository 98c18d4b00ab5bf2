package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/rgehrsitz/isrmx/internal/metrics"
	"github.com/shopspring/decimal"
)

const basePath = "/api/taxcalculations"

// Calculator computes withholding results against the active tables.
type Calculator interface {
	Calculate(income decimal.Decimal) (domain.TaxResult, error)
	Tables() *calculation.Tables
}

// Repository stores calculation results.
type Repository interface {
	Save(ctx context.Context, result domain.TaxResult) (domain.TaxRecord, error)
	Get(ctx context.Context, id uuid.UUID) (domain.TaxRecord, error)
	List(ctx context.Context) ([]domain.TaxRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler serves the tax calculation endpoints.
type Handler struct {
	calc    Calculator
	repo    Repository
	logger  calculation.Logger
	metrics *metrics.Metrics
}

// New creates a Handler. logger and m may be nil.
func New(calc Calculator, repo Repository, logger calculation.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	return &Handler{calc: calc, repo: repo, logger: logger, metrics: m}
}

// Register registers the API routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(h.observe)

		r.Post(basePath+"/calculate", h.handleCalculate)
		r.Post(basePath, h.handleCreate)
		r.Get(basePath, h.handleList)
		r.Get(basePath+"/{id}", h.handleGet)
		r.Delete(basePath+"/{id}", h.handleDelete)
		r.Get("/api/tables", h.handleTables)
	})

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}
}

type calculateRequest struct {
	GrossSalary *decimal.Decimal `json:"grossSalary"`
}

type recordResponse struct {
	ID uuid.UUID `json:"id"`
	domain.TaxResult
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(rec domain.TaxRecord) recordResponse {
	return recordResponse{ID: rec.ID, TaxResult: rec.Result, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	result, ok := h.calculate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	result, ok := h.calculate(w, r)
	if !ok {
		return
	}

	rec, err := h.repo.Save(r.Context(), result)
	if err != nil {
		h.logger.Errorf("request %s: save tax calculation: %v", middleware.GetReqID(r.Context()), err)
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", basePath+"/"+rec.ID.String())
	writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Errorf("request %s: list tax calculations: %v", middleware.GetReqID(r.Context()), err)
		h.writeError(w, err)
		return
	}
	resp := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.calc.Tables().FiscalTables())
}

// calculate decodes the request body and runs the calculation, writing the
// error response itself when it fails.
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) (domain.TaxResult, bool) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("request %s: invalid request body: %v", middleware.GetReqID(r.Context()), err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return domain.TaxResult{}, false
	}
	if req.GrossSalary == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "grossSalary is required"})
		return domain.TaxResult{}, false
	}

	result, err := h.calc.Calculate(*req.GrossSalary)
	if err != nil {
		h.logger.Warnf("request %s: calculate: %v", middleware.GetReqID(r.Context()), err)
		h.writeError(w, err)
		return domain.TaxResult{}, false
	}
	return result, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tax calculation not found"})
		return uuid.Nil, false
	}
	return id, true
}

// observe records request count and latency under the matched route pattern.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveRequest(route, r.Method, status, time.Since(start))
		h.logger.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidIncome):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tax calculation not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
