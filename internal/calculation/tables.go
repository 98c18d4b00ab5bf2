package calculation

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Tables is a validated, immutable set of fiscal tables. Rows are copied on
// construction and on every accessor, so nothing outside this package can
// edit a table that a Calculator is reading.
type Tables struct {
	year         int
	jurisdiction string
	period       string
	isr          []domain.BracketRow
	subsidy      []domain.SubsidyRow
	rule         domain.ContributionRule
}

// NewTables validates the fiscal tables and returns an immutable copy.
// Any violation is reported as domain.ErrMalformedTable.
func NewTables(ft domain.FiscalTables) (*Tables, error) {
	if err := validateISRRows(ft.ISR); err != nil {
		return nil, fmt.Errorf("%w: ISR table: %v", domain.ErrMalformedTable, err)
	}
	if err := validateSubsidyRows(ft.Subsidy); err != nil {
		return nil, fmt.Errorf("%w: subsidy table: %v", domain.ErrMalformedTable, err)
	}
	if err := validateContributionRule(ft.Contribution); err != nil {
		return nil, fmt.Errorf("%w: contribution rule: %v", domain.ErrMalformedTable, err)
	}

	return &Tables{
		year:         ft.Year,
		jurisdiction: ft.Jurisdiction,
		period:       ft.Period,
		isr:          append([]domain.BracketRow(nil), ft.ISR...),
		subsidy:      append([]domain.SubsidyRow(nil), ft.Subsidy...),
		rule:         ft.Contribution,
	}, nil
}

// Year returns the fiscal year the tables apply to.
func (t *Tables) Year() int { return t.year }

// Jurisdiction returns the issuing authority label, e.g. "MX-SAT".
func (t *Tables) Jurisdiction() string { return t.jurisdiction }

// Period returns the withholding period, e.g. "monthly".
func (t *Tables) Period() string { return t.period }

// ContributionRule returns the capped contribution rule.
func (t *Tables) ContributionRule() domain.ContributionRule { return t.rule }

// ISRRows returns a copy of the ISR table.
func (t *Tables) ISRRows() []domain.BracketRow {
	return append([]domain.BracketRow(nil), t.isr...)
}

// SubsidyRows returns a copy of the subsidy table.
func (t *Tables) SubsidyRows() []domain.SubsidyRow {
	return append([]domain.SubsidyRow(nil), t.subsidy...)
}

// FiscalTables returns the tables in their plain data form.
func (t *Tables) FiscalTables() domain.FiscalTables {
	return domain.FiscalTables{
		Year:         t.year,
		Jurisdiction: t.jurisdiction,
		Period:       t.period,
		ISR:          t.ISRRows(),
		Subsidy:      t.SubsidyRows(),
		Contribution: t.rule,
	}
}

// ResolveISRBracket returns the single ISR row whose range contains income.
func (t *Tables) ResolveISRBracket(income decimal.Decimal) (domain.BracketRow, error) {
	if income.IsNegative() {
		return domain.BracketRow{}, fmt.Errorf("%w: %s is negative", domain.ErrInvalidIncome, income)
	}
	return t.isr[t.isrIndex(income)], nil
}

// ResolveSubsidy returns the flat employment subsidy for income. The final
// table row carries a zero subsidy, so incomes above the ceiling get zero.
func (t *Tables) ResolveSubsidy(income decimal.Decimal) (decimal.Decimal, error) {
	if income.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", domain.ErrInvalidIncome, income)
	}
	return t.subsidy[t.subsidyIndex(income)].Subsidy, nil
}

// isrIndex finds the last row whose lower limit does not exceed income. A row
// therefore owns [lowerLimit, next.lowerLimit), which equals the closed
// [lowerLimit, upperLimit] for amounts in whole centavos. Amounts below the
// first lower limit (0.00 when the table starts at 0.01) map to the first row.
func (t *Tables) isrIndex(income decimal.Decimal) int {
	i := sort.Search(len(t.isr), func(i int) bool {
		return t.isr[i].LowerLimit.GreaterThan(income)
	}) - 1
	if i < 0 {
		return 0
	}
	return i
}

func (t *Tables) subsidyIndex(income decimal.Decimal) int {
	i := sort.Search(len(t.subsidy), func(i int) bool {
		return t.subsidy[i].LowerLimit.GreaterThan(income)
	}) - 1
	if i < 0 {
		return 0
	}
	return i
}

// checkRange enforces the shared ordering rules for both tables.
func checkRange(i, n int, lower, upper decimal.Decimal, openEnded bool, prevUpper decimal.Decimal) error {
	if lower.IsNegative() {
		return fmt.Errorf("row %d: lower limit %s is negative", i, lower)
	}
	if i == 0 && lower.GreaterThan(domain.MinorUnit) {
		return fmt.Errorf("row 0: table must start at 0 or %s, starts at %s", domain.MinorUnit, lower)
	}
	last := i == n-1
	if openEnded && !last {
		return fmt.Errorf("row %d: only the final row may be unbounded", i)
	}
	if !openEnded && last {
		return fmt.Errorf("row %d: final row must be unbounded, upper limit is %s", i, upper)
	}
	if upper.LessThan(lower) {
		return fmt.Errorf("row %d: upper limit %s is below lower limit %s", i, upper, lower)
	}
	if i > 0 {
		expected := prevUpper.Add(domain.MinorUnit)
		switch {
		case lower.GreaterThan(expected):
			return fmt.Errorf("row %d: gap between %s and %s", i, prevUpper, lower)
		case lower.LessThan(expected):
			return fmt.Errorf("row %d: lower limit %s overlaps previous upper limit %s", i, lower, prevUpper)
		}
	}
	return nil
}

func validateISRRows(rows []domain.BracketRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows")
	}
	one := decimal.NewFromInt(1)
	for i, r := range rows {
		var prevUpper decimal.Decimal
		if i > 0 {
			prevUpper = rows[i-1].UpperLimit
		}
		if err := checkRange(i, len(rows), r.LowerLimit, r.UpperLimit, r.IsOpenEnded(), prevUpper); err != nil {
			return err
		}
		if r.FixedQuota.IsNegative() {
			return fmt.Errorf("row %d: fixed quota %s is negative", i, r.FixedQuota)
		}
		if r.MarginalRate.IsNegative() || r.MarginalRate.GreaterThanOrEqual(one) {
			return fmt.Errorf("row %d: marginal rate %s outside [0, 1)", i, r.MarginalRate)
		}
		if i > 0 {
			// Published quotas are rounded to centavos, so a quota may sit
			// slightly under the tax owed at the previous upper limit, never
			// a full centavo under.
			prev := rows[i-1]
			owedAtPrevUpper := ComputeISR(prev, prev.UpperLimit).TotalISR
			if r.FixedQuota.LessThan(owedAtPrevUpper.Sub(domain.MinorUnit)) {
				return fmt.Errorf("row %d: fixed quota %s is below %s owed at previous upper limit",
					i, r.FixedQuota, owedAtPrevUpper.StringFixed(2))
			}
		}
	}
	return nil
}

func validateSubsidyRows(rows []domain.SubsidyRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows")
	}
	for i, r := range rows {
		var prevUpper decimal.Decimal
		if i > 0 {
			prevUpper = rows[i-1].UpperLimit
		}
		if err := checkRange(i, len(rows), r.LowerLimit, r.UpperLimit, r.IsOpenEnded(), prevUpper); err != nil {
			return err
		}
		if r.Subsidy.IsNegative() {
			return fmt.Errorf("row %d: subsidy %s is negative", i, r.Subsidy)
		}
	}
	if last := rows[len(rows)-1]; !last.Subsidy.IsZero() {
		return fmt.Errorf("final row must carry a zero subsidy, has %s", last.Subsidy)
	}
	return nil
}

func validateContributionRule(rule domain.ContributionRule) error {
	if !rule.Rate.IsPositive() || rule.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate %s outside (0, 1)", rule.Rate)
	}
	if !rule.MaxContributableBase.IsPositive() {
		return fmt.Errorf("maximum contributable base %s must be positive", rule.MaxContributableBase)
	}
	return nil
}
