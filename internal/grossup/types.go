package grossup

import (
	"fmt"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Request asks for the gross monthly income that yields TargetNet.
type Request struct {
	TargetNet decimal.Decimal `json:"targetNet"`

	// Tolerance is the width of the final search interval. Zero means
	// the solver default.
	Tolerance decimal.Decimal `json:"tolerance"`

	MaxIterations int `json:"maxIterations"`
}

// Validate checks the request before any calculation runs.
func (r Request) Validate() error {
	if r.TargetNet.IsNegative() {
		return &GrossUpError{
			Operation: "validate",
			Message:   fmt.Sprintf("target net %s is negative", r.TargetNet),
			Cause:     domain.ErrInvalidIncome,
		}
	}
	if r.Tolerance.IsNegative() {
		return &GrossUpError{
			Operation: "validate",
			Message:   fmt.Sprintf("tolerance %s is negative", r.Tolerance),
		}
	}
	if r.MaxIterations < 0 {
		return &GrossUpError{
			Operation: "validate",
			Message:   fmt.Sprintf("max iterations %d is negative", r.MaxIterations),
		}
	}
	return nil
}

// Result is the lowest gross found whose net income reaches the target.
type Result struct {
	Request         Request          `json:"request"`
	Success         bool             `json:"success"`
	Iterations      int              `json:"iterations"`
	ConvergenceInfo string           `json:"convergenceInfo"`
	GrossIncome     decimal.Decimal  `json:"grossIncome"`
	Tax             domain.TaxResult `json:"tax"`

	// Overshoot is the achieved net minus the target. Never negative on success.
	Overshoot decimal.Decimal `json:"overshoot"`
}

// SolverOptions configures the solver defaults
type SolverOptions struct {
	Tolerance     decimal.Decimal
	MaxIterations int
}

// DefaultSolverOptions searches to the centavo.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.New(1, -2),
		MaxIterations: 200,
	}
}

// GrossUpError represents errors from the gross-up solver
type GrossUpError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *GrossUpError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *GrossUpError) Unwrap() error {
	return e.Cause
}
