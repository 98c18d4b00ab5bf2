package calculation

import (
	"testing"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func isrRow(lower, upper, quota, rate string) domain.BracketRow {
	up := domain.Unbounded
	if upper != "" {
		up = d(upper)
	}
	return domain.BracketRow{LowerLimit: d(lower), UpperLimit: up, FixedQuota: d(quota), MarginalRate: d(rate)}
}

func subsidyRow(lower, upper, amount string) domain.SubsidyRow {
	up := domain.Unbounded
	if upper != "" {
		up = d(upper)
	}
	return domain.SubsidyRow{LowerLimit: d(lower), UpperLimit: up, Subsidy: d(amount)}
}

// reference2024 is the 2024 monthly SAT table used throughout the tests.
func reference2024() domain.FiscalTables {
	return domain.FiscalTables{
		Year:         2024,
		Jurisdiction: "MX-SAT",
		Period:       "monthly",
		ISR: []domain.BracketRow{
			isrRow("0.01", "746.04", "0", "0.0192"),
			isrRow("746.05", "6332.05", "14.32", "0.0640"),
			isrRow("6332.06", "11128.01", "371.83", "0.1088"),
			isrRow("11128.02", "12935.82", "893.63", "0.1600"),
			isrRow("12935.83", "15487.71", "1182.88", "0.1792"),
			isrRow("15487.72", "31236.49", "1640.18", "0.2136"),
			isrRow("31236.50", "49233.00", "5004.12", "0.2352"),
			isrRow("49233.01", "93993.90", "9236.89", "0.3000"),
			isrRow("93993.91", "125325.20", "22665.17", "0.3200"),
			isrRow("125325.21", "375975.61", "32691.18", "0.3400"),
			isrRow("375975.62", "", "117912.32", "0.3500"),
		},
		Subsidy: []domain.SubsidyRow{
			subsidyRow("0.01", "1768.96", "407.02"),
			subsidyRow("1768.97", "2653.38", "406.83"),
			subsidyRow("2653.39", "3472.84", "406.62"),
			subsidyRow("3472.85", "3537.87", "392.77"),
			subsidyRow("3537.88", "4446.15", "382.46"),
			subsidyRow("4446.16", "4717.18", "354.23"),
			subsidyRow("4717.19", "5335.42", "324.87"),
			subsidyRow("5335.43", "6224.67", "294.63"),
			subsidyRow("6224.68", "7113.90", "253.54"),
			subsidyRow("7113.91", "7382.33", "217.61"),
			subsidyRow("7382.34", "", "0"),
		},
		Contribution: domain.ContributionRule{
			Rate:                 d("0.02375"),
			MaxContributableBase: d("81427.50"),
		},
	}
}

func mustTables(t *testing.T, ft domain.FiscalTables) *Tables {
	t.Helper()
	tables, err := NewTables(ft)
	require.NoError(t, err)
	return tables
}

func mustCalculator(t *testing.T, opts ...Option) *Calculator {
	t.Helper()
	c, err := NewCalculator(mustTables(t, reference2024()), opts...)
	require.NoError(t, err)
	return c
}

// incomeGrid walks [0, max] in steps, plus every bracket edge of the table.
func incomeGrid(tables *Tables, max, step decimal.Decimal) []decimal.Decimal {
	var grid []decimal.Decimal
	for x := decimal.Zero; x.LessThanOrEqual(max); x = x.Add(step) {
		grid = append(grid, x)
	}
	for _, r := range tables.ISRRows() {
		grid = append(grid, r.LowerLimit)
		if !r.IsOpenEnded() {
			grid = append(grid, r.UpperLimit)
		}
	}
	return grid
}
