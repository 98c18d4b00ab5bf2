package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculator computes one withholding result.
type Calculator interface {
	Calculate(income decimal.Decimal) (domain.TaxResult, error)
}

// CompareEngine orchestrates income comparison
type CompareEngine struct {
	Calc              Calculator
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calc Calculator) *CompareEngine {
	return &CompareEngine{
		Calc:              calc,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// Compare calculates the base income and every alternative, in order.
func (ce *CompareEngine) Compare(ctx context.Context, base decimal.Decimal, alternatives []decimal.Decimal) (*ComparisonSet, error) {
	baseTax, err := ce.Calc.Calculate(base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base income: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseTax)

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, income := range alternatives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		altTax, err := ce.Calc.Calculate(income)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate income %s: %w", income, err)
		}
		altResult := ce.MetricsCalculator.CalculateMetrics(altTax)
		results = append(results, ce.MetricsCalculator.CalculateComparison(altResult, baseResult))
	}

	compSet := &ComparisonSet{
		FiscalYear:         baseTax.FiscalYear,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
