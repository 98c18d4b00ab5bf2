package tui

import "github.com/rgehrsitz/isrmx/internal/domain"

// CalculationCompleteMsg carries the outcome of one calculation.
type CalculationCompleteMsg struct {
	Input  string
	Result domain.TaxResult
	Err    error
}
