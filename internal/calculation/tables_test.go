package calculation

import (
	"testing"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTables_Reference2024(t *testing.T) {
	tables := mustTables(t, reference2024())

	assert.Equal(t, 2024, tables.Year())
	assert.Equal(t, "MX-SAT", tables.Jurisdiction())
	assert.Equal(t, "monthly", tables.Period())
	assert.Len(t, tables.ISRRows(), 11)
	assert.Len(t, tables.SubsidyRows(), 11)
	assert.True(t, tables.ContributionRule().Rate.Equal(d("0.02375")))
}

func TestNewTables_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ft *domain.FiscalTables)
		want   string
	}{
		{
			name:   "empty ISR table",
			mutate: func(ft *domain.FiscalTables) { ft.ISR = nil },
			want:   "no rows",
		},
		{
			name:   "gap between ISR rows",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[3].LowerLimit = d("11128.05") },
			want:   "gap",
		},
		{
			name:   "overlapping ISR rows",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[3].LowerLimit = d("11000.00") },
			want:   "overlaps",
		},
		{
			name: "non-ascending ISR rows",
			mutate: func(ft *domain.FiscalTables) {
				ft.ISR[2], ft.ISR[3] = ft.ISR[3], ft.ISR[2]
			},
			want: "row 2: gap",
		},
		{
			name:   "bounded final ISR row",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[10].UpperLimit = d("500000") },
			want:   "final row must be unbounded",
		},
		{
			name:   "unbounded middle row",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[4].UpperLimit = domain.Unbounded },
			want:   "only the final row may be unbounded",
		},
		{
			name:   "table does not start at zero",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[0].LowerLimit = d("100") },
			want:   "must start at 0",
		},
		{
			name:   "upper below lower",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[0].UpperLimit = d("0.00") },
			want:   "below lower limit",
		},
		{
			name:   "negative marginal rate",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[1].MarginalRate = d("-0.01") },
			want:   "marginal rate",
		},
		{
			name:   "marginal rate of one",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[10].MarginalRate = d("1") },
			want:   "marginal rate",
		},
		{
			name:   "fixed quota drops below previous bracket",
			mutate: func(ft *domain.FiscalTables) { ft.ISR[5].FixedQuota = d("1000.00") },
			want:   "fixed quota",
		},
		{
			name:   "empty subsidy table",
			mutate: func(ft *domain.FiscalTables) { ft.Subsidy = nil },
			want:   "subsidy table",
		},
		{
			name:   "gap in subsidy table",
			mutate: func(ft *domain.FiscalTables) { ft.Subsidy[1].LowerLimit = d("1770.00") },
			want:   "gap",
		},
		{
			name:   "non-zero final subsidy",
			mutate: func(ft *domain.FiscalTables) { ft.Subsidy[10].Subsidy = d("10") },
			want:   "zero subsidy",
		},
		{
			name:   "negative subsidy",
			mutate: func(ft *domain.FiscalTables) { ft.Subsidy[2].Subsidy = d("-1") },
			want:   "negative",
		},
		{
			name:   "zero contribution rate",
			mutate: func(ft *domain.FiscalTables) { ft.Contribution.Rate = d("0") },
			want:   "contribution rule",
		},
		{
			name:   "negative contributable base",
			mutate: func(ft *domain.FiscalTables) { ft.Contribution.MaxContributableBase = d("-5") },
			want:   "maximum contributable base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := reference2024()
			tt.mutate(&ft)

			tables, err := NewTables(ft)
			require.Error(t, err)
			assert.Nil(t, tables)
			assert.ErrorIs(t, err, domain.ErrMalformedTable)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewTables_SingleOpenRow(t *testing.T) {
	ft := domain.FiscalTables{
		Year:         2030,
		ISR:          []domain.BracketRow{isrRow("0", "", "0", "0.10")},
		Subsidy:      []domain.SubsidyRow{subsidyRow("0", "", "0")},
		Contribution: domain.ContributionRule{Rate: d("0.01"), MaxContributableBase: d("1000")},
	}
	tables := mustTables(t, ft)

	row, err := tables.ResolveISRBracket(d("123456"))
	require.NoError(t, err)
	assert.True(t, row.IsOpenEnded())
}

func TestNewTables_CopiesRows(t *testing.T) {
	ft := reference2024()
	tables := mustTables(t, ft)

	// Editing the caller's slice or a returned copy must not reach the table.
	ft.ISR[2].FixedQuota = d("0")
	rows := tables.ISRRows()
	rows[2].FixedQuota = d("0")
	subsidies := tables.SubsidyRows()
	subsidies[0].Subsidy = d("0")

	row, err := tables.ResolveISRBracket(d("10000"))
	require.NoError(t, err)
	assert.True(t, row.FixedQuota.Equal(d("371.83")))

	s, err := tables.ResolveSubsidy(d("0"))
	require.NoError(t, err)
	assert.True(t, s.Equal(d("407.02")))
}

func TestResolveISRBracket_ExactlyOneRowPerIncome(t *testing.T) {
	tables := mustTables(t, reference2024())
	rows := tables.ISRRows()

	for _, income := range incomeGrid(tables, d("500000"), d("37.17")) {
		row, err := tables.ResolveISRBracket(income)
		require.NoError(t, err)

		if income.GreaterThanOrEqual(rows[0].LowerLimit) {
			assert.True(t, row.LowerLimit.LessThanOrEqual(income), "income %s below row lower %s", income, row.LowerLimit)
		}
		assert.True(t, income.LessThanOrEqual(row.UpperLimit), "income %s above row upper %s", income, row.UpperLimit)

		matches := 0
		for _, r := range rows {
			if r.LowerLimit.LessThanOrEqual(income) && income.LessThanOrEqual(r.UpperLimit) {
				matches++
			}
		}
		if income.GreaterThanOrEqual(rows[0].LowerLimit) {
			assert.Equal(t, 1, matches, "income %s", income)
		}
	}
}

func TestResolveISRBracket_UpperLimitIsClosed(t *testing.T) {
	tables := mustTables(t, reference2024())
	rows := tables.ISRRows()

	for i, r := range rows[:len(rows)-1] {
		at, err := tables.ResolveISRBracket(r.UpperLimit)
		require.NoError(t, err)
		assert.Equal(t, r, at, "upper limit %s should stay in row %d", r.UpperLimit, i)

		next, err := tables.ResolveISRBracket(r.UpperLimit.Add(domain.MinorUnit))
		require.NoError(t, err)
		assert.Equal(t, rows[i+1], next)
	}
}

func TestResolveISRBracket_Scenario10000(t *testing.T) {
	tables := mustTables(t, reference2024())

	row, err := tables.ResolveISRBracket(d("10000"))
	require.NoError(t, err)
	assert.True(t, row.LowerLimit.Equal(d("6332.06")))
	assert.True(t, row.UpperLimit.Equal(d("11128.01")))
	assert.True(t, row.FixedQuota.Equal(d("371.83")))
	assert.True(t, row.MarginalRate.Equal(d("0.1088")))
}

func TestResolveISRBracket_BelowFirstLowerLimit(t *testing.T) {
	tables := mustTables(t, reference2024())

	row, err := tables.ResolveISRBracket(d("0"))
	require.NoError(t, err)
	assert.Equal(t, tables.ISRRows()[0], row)
}

func TestResolve_NegativeIncome(t *testing.T) {
	tables := mustTables(t, reference2024())

	_, err := tables.ResolveISRBracket(d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidIncome)

	_, err = tables.ResolveSubsidy(d("-0.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidIncome)
}

func TestResolveSubsidy(t *testing.T) {
	tables := mustTables(t, reference2024())

	tests := []struct {
		income string
		want   string
	}{
		{"0", "407.02"},
		{"0.01", "407.02"},
		{"1768.96", "407.02"},
		{"1768.97", "406.83"},
		{"5000", "324.87"},
		{"7382.33", "217.61"},
		{"7382.34", "0"},
		{"10000", "0"},
		{"1000000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.income, func(t *testing.T) {
			got, err := tables.ResolveSubsidy(d(tt.income))
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestTables_FiscalTablesRoundTrip(t *testing.T) {
	ft := reference2024()
	tables := mustTables(t, ft)

	again := mustTables(t, tables.FiscalTables())
	assert.Equal(t, tables.ISRRows(), again.ISRRows())
	assert.Equal(t, tables.SubsidyRows(), again.SubsidyRows())
	assert.Equal(t, tables.ContributionRule(), again.ContributionRule())
}
