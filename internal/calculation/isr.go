package calculation

import (
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// ISRComponents is the bracket formula broken into its parts.
type ISRComponents struct {
	Excess      decimal.Decimal
	MarginalTax decimal.Decimal
	TotalISR    decimal.Decimal
}

// ComputeISR applies a bracket row's formula to income:
//
//	excess      = max(0, income - lowerLimit)
//	marginalTax = excess * marginalRate
//	totalISR    = fixedQuota + marginalTax
//
// Nothing is rounded here.
func ComputeISR(row domain.BracketRow, income decimal.Decimal) ISRComponents {
	excess := decimal.Max(decimal.Zero, income.Sub(row.LowerLimit))
	marginal := excess.Mul(row.MarginalRate)
	return ISRComponents{
		Excess:      excess,
		MarginalTax: marginal,
		TotalISR:    row.FixedQuota.Add(marginal),
	}
}

// ComputeContribution returns the employee social-security quota: the rate
// applied to income capped at the maximum contributable base.
func ComputeContribution(income decimal.Decimal, rule domain.ContributionRule) decimal.Decimal {
	base := decimal.Min(income, rule.MaxContributableBase)
	if base.IsNegative() {
		return decimal.Zero
	}
	return base.Mul(rule.Rate)
}
