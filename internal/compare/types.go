package compare

import (
	"fmt"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComparisonResult is one gross income's withholding with its deltas from the base.
type ComparisonResult struct {
	Label  string           `json:"label"`
	Result domain.TaxResult `json:"result"`

	// Comparison to Base
	GrossDiffFromBase       decimal.Decimal `json:"grossDiffFromBase"`
	NetDiffFromBase         decimal.Decimal `json:"netDiffFromBase"`
	NetPctFromBase          decimal.Decimal `json:"netPctFromBase"`
	WithholdingDiffFromBase decimal.Decimal `json:"withholdingDiffFromBase"`

	// Share of the gross difference that reaches net income; zero when the
	// gross incomes are equal.
	RetentionRate  decimal.Decimal `json:"retentionRate"`
	BracketChanged bool            `json:"bracketChanged"`
}

// ComparisonSet is a base income compared against alternatives.
type ComparisonSet struct {
	FiscalYear         int                `json:"fiscalYear"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
}

// MetricsCalculator derives comparison metrics between results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics wraps a single result for comparison.
func (mc *MetricsCalculator) CalculateMetrics(result domain.TaxResult) ComparisonResult {
	return ComparisonResult{
		Label:  result.GrossIncome.StringFixed(2),
		Result: result,
	}
}

// CalculateComparison computes alt's deltas against base.
func (mc *MetricsCalculator) CalculateComparison(alt, base ComparisonResult) ComparisonResult {
	alt.GrossDiffFromBase = alt.Result.GrossIncome.Sub(base.Result.GrossIncome)
	alt.NetDiffFromBase = alt.Result.NetIncome.Sub(base.Result.NetIncome)
	alt.WithholdingDiffFromBase = alt.Result.TotalWithholding().Sub(base.Result.TotalWithholding())

	if !base.Result.NetIncome.IsZero() {
		alt.NetPctFromBase = alt.NetDiffFromBase.Div(base.Result.NetIncome).Mul(hundred)
	}
	if !alt.GrossDiffFromBase.IsZero() {
		alt.RetentionRate = alt.NetDiffFromBase.Div(alt.GrossDiffFromBase)
	}
	alt.BracketChanged = !alt.Result.LowerLimit.Equal(base.Result.LowerLimit)
	return alt
}

// GenerateRecommendations summarises what stands out in a comparison set.
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 || compSet.BaseResult == nil {
		return recommendations
	}
	base := compSet.BaseResult

	// Highest net income
	best := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.Result.NetIncome.GreaterThan(best.Result.NetIncome) {
			best = alt
		}
	}
	if best != base {
		recommendations = append(recommendations,
			fmt.Sprintf("Highest Net: %s keeps $%s more per month than %s",
				best.Label, best.NetDiffFromBase.StringFixed(2), base.Label))
	}

	for _, alt := range compSet.AlternativeResults {
		switch {
		case alt.GrossDiffFromBase.IsPositive() && !alt.NetDiffFromBase.IsPositive():
			recommendations = append(recommendations,
				fmt.Sprintf("No Gain: %s earns $%s more gross but nets $%s less",
					alt.Label, alt.GrossDiffFromBase.StringFixed(2), alt.NetDiffFromBase.Neg().StringFixed(2)))
		case alt.GrossDiffFromBase.IsPositive():
			recommendations = append(recommendations,
				fmt.Sprintf("Retention: %s keeps %s%% of the extra $%s gross",
					alt.Label, alt.RetentionRate.Mul(hundred).StringFixed(1), alt.GrossDiffFromBase.StringFixed(2)))
		}

		if base.Result.Subsidy.IsPositive() && alt.Result.Subsidy.LessThan(base.Result.Subsidy) {
			recommendations = append(recommendations,
				fmt.Sprintf("Subsidy: %s receives $%s less employment subsidy than %s",
					alt.Label, base.Result.Subsidy.Sub(alt.Result.Subsidy).StringFixed(2), base.Label))
		}
	}

	return recommendations
}
