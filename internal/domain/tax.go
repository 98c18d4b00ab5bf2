package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidIncome is returned for negative or non-finite income amounts.
	ErrInvalidIncome = errors.New("invalid income")
	// ErrMalformedTable is returned when fiscal tables or the contribution rule
	// break the ordering/contiguity invariants.
	ErrMalformedTable = errors.New("malformed table")
	// ErrNotFound is returned by storage when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// MinorUnit is the smallest currency amount (one centavo).
var MinorUnit = decimal.New(1, -2)

// Unbounded marks the open upper end of the final table row. It is the largest
// amount a decimal(18,2) column can hold and is only ever compared against.
var Unbounded = decimal.RequireFromString("999999999999999.99")

// BracketRow is one row of the monthly ISR table.
type BracketRow struct {
	LowerLimit   decimal.Decimal `json:"lowerLimit"`
	UpperLimit   decimal.Decimal `json:"upperLimit"`
	FixedQuota   decimal.Decimal `json:"fixedQuota"`
	MarginalRate decimal.Decimal `json:"marginalRate"`
}

// IsOpenEnded reports whether the row has no upper limit.
func (r BracketRow) IsOpenEnded() bool {
	return r.UpperLimit.GreaterThanOrEqual(Unbounded)
}

// SubsidyRow is one row of the employment subsidy table.
type SubsidyRow struct {
	LowerLimit decimal.Decimal `json:"lowerLimit"`
	UpperLimit decimal.Decimal `json:"upperLimit"`
	Subsidy    decimal.Decimal `json:"subsidy"`
}

// IsOpenEnded reports whether the row has no upper limit.
func (r SubsidyRow) IsOpenEnded() bool {
	return r.UpperLimit.GreaterThanOrEqual(Unbounded)
}

// ContributionRule is the employee IMSS quota: a flat rate on income capped at
// a maximum contributable base.
type ContributionRule struct {
	Rate                 decimal.Decimal `json:"rate"`
	MaxContributableBase decimal.Decimal `json:"maxContributableBase"`
}

// MaxContribution is the ceiling no contribution can exceed.
func (c ContributionRule) MaxContribution() decimal.Decimal {
	return c.MaxContributableBase.Mul(c.Rate)
}

// FiscalTables is the injected configuration for one fiscal year: the ISR
// table, the subsidy table and the contribution rule.
type FiscalTables struct {
	Year         int              `json:"year"`
	Jurisdiction string           `json:"jurisdiction"`
	Period       string           `json:"period"`
	ISR          []BracketRow     `json:"isr"`
	Subsidy      []SubsidyRow     `json:"subsidy"`
	Contribution ContributionRule `json:"contribution"`
}

// TaxResult is the full breakdown of one monthly withholding calculation.
// Amounts are exact; use Rounded for presentation.
type TaxResult struct {
	FiscalYear           int             `json:"fiscalYear"`
	GrossIncome          decimal.Decimal `json:"grossIncome"`
	LowerLimit           decimal.Decimal `json:"lowerLimit"`
	ExcessOverLowerLimit decimal.Decimal `json:"excessOverLowerLimit"`
	MarginalRatePercent  decimal.Decimal `json:"marginalRatePercent"`
	MarginalTax          decimal.Decimal `json:"marginalTax"`
	FixedQuota           decimal.Decimal `json:"fixedQuota"`
	TotalISR             decimal.Decimal `json:"totalISR"`
	Contribution         decimal.Decimal `json:"contribution"`
	Subsidy              decimal.Decimal `json:"subsidy"`
	NetIncome            decimal.Decimal `json:"netIncome"`
	EffectiveRate        decimal.Decimal `json:"effectiveRate"`
	ComputedAt           time.Time       `json:"computedAt"`
}

// TotalWithholding is ISR plus contribution minus subsidy.
func (r TaxResult) TotalWithholding() decimal.Decimal {
	return r.TotalISR.Add(r.Contribution).Sub(r.Subsidy)
}

// Equal compares every numeric field, ignoring ComputedAt.
func (r TaxResult) Equal(o TaxResult) bool {
	return r.FiscalYear == o.FiscalYear &&
		r.GrossIncome.Equal(o.GrossIncome) &&
		r.LowerLimit.Equal(o.LowerLimit) &&
		r.ExcessOverLowerLimit.Equal(o.ExcessOverLowerLimit) &&
		r.MarginalRatePercent.Equal(o.MarginalRatePercent) &&
		r.MarginalTax.Equal(o.MarginalTax) &&
		r.FixedQuota.Equal(o.FixedQuota) &&
		r.TotalISR.Equal(o.TotalISR) &&
		r.Contribution.Equal(o.Contribution) &&
		r.Subsidy.Equal(o.Subsidy) &&
		r.NetIncome.Equal(o.NetIncome) &&
		r.EffectiveRate.Equal(o.EffectiveRate)
}

// Rounded returns a copy with money fields rounded to the minor unit and the
// effective rate to four places. Only for display; the exact values stay on r.
func (r TaxResult) Rounded() TaxResult {
	out := r
	out.GrossIncome = r.GrossIncome.Round(2)
	out.LowerLimit = r.LowerLimit.Round(2)
	out.ExcessOverLowerLimit = r.ExcessOverLowerLimit.Round(2)
	out.MarginalRatePercent = r.MarginalRatePercent.Round(2)
	out.MarginalTax = r.MarginalTax.Round(2)
	out.FixedQuota = r.FixedQuota.Round(2)
	out.TotalISR = r.TotalISR.Round(2)
	out.Contribution = r.Contribution.Round(2)
	out.Subsidy = r.Subsidy.Round(2)
	out.NetIncome = r.NetIncome.Round(2)
	out.EffectiveRate = r.EffectiveRate.Round(4)
	return out
}

// TaxRecord is a persisted TaxResult.
type TaxRecord struct {
	ID        uuid.UUID `json:"id"`
	Result    TaxResult `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
