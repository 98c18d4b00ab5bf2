package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing incomes
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("GROSS SALARY COMPARISON (%d)\n", compSet.FiscalYear))
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	nameWidth := 18
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Gross",
		numWidth, "ISR",
		numWidth, "IMSS",
		numWidth, "Subsidy",
		numWidth, "Net"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Label))
			sb.WriteString(fmt.Sprintf("  Gross:        %s\n", tf.signedCurrency(alt.GrossDiffFromBase)))
			sb.WriteString(fmt.Sprintf("  Net:          %s (%s%%)\n",
				tf.signedCurrency(alt.NetDiffFromBase), alt.NetPctFromBase.StringFixed(1)))
			sb.WriteString(fmt.Sprintf("  Withholding:  %s\n", tf.signedCurrency(alt.WithholdingDiffFromBase)))
			if !alt.GrossDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Retention:    %s\n", output.FormatRate(alt.RetentionRate)))
			}
			if alt.BracketChanged {
				sb.WriteString(fmt.Sprintf("  ISR bracket:  %s -> %s\n",
					output.FormatCurrency(compSet.BaseResult.Result.LowerLimit),
					output.FormatCurrency(alt.Result.LowerLimit)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nNOTES\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := output.FormatCurrency(result.Result.GrossIncome)
	if isBase {
		name += " (base)"
	}
	r := result.Result
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, name,
		numWidth, output.FormatCurrency(r.TotalISR),
		numWidth, output.FormatCurrency(r.Contribution),
		numWidth, output.FormatCurrency(r.Subsidy),
		numWidth, output.FormatCurrency(r.NetIncome))
}

func (tf *TableFormatter) signedCurrency(d decimal.Decimal) string {
	if d.IsNegative() {
		return output.FormatCurrency(d)
	}
	return "+" + output.FormatCurrency(d)
}

// FormatCompact creates a compact single-line summary
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseResult.Label))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(fmt.Sprintf("%s: net %s", alt.Label, tf.signedCurrency(alt.NetDiffFromBase)))
	}

	return sb.String()
}
