package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/isrmx/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	netStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// ConsoleFormatter prints a human readable withholding summary.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(result domain.TaxResult) ([]byte, error) {
	var buf bytes.Buffer
	rule := strings.Repeat("-", 40)

	fmt.Fprintln(&buf, titleStyle.Render(fmt.Sprintf("MONTHLY WITHHOLDING SUMMARY (%d)", result.FiscalYear)))
	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "Gross Salary:          %s\n", FormatCurrency(result.GrossIncome))
	fmt.Fprintf(&buf, "ISR:                  -%s\n", FormatCurrency(result.TotalISR))
	fmt.Fprintf(&buf, "IMSS:                 -%s\n", FormatCurrency(result.Contribution))
	fmt.Fprintf(&buf, "Employment Subsidy:   +%s\n", FormatCurrency(result.Subsidy))
	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "%s\n", netStyle.Render("Net Salary:            "+FormatCurrency(result.NetIncome)))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, titleStyle.Render("ISR BREAKDOWN"))
	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "Lower Limit:           %s\n", FormatCurrency(result.LowerLimit))
	fmt.Fprintf(&buf, "Excess Over Lower:     %s\n", FormatCurrency(result.ExcessOverLowerLimit))
	fmt.Fprintf(&buf, "Marginal Rate:         %s\n", FormatPercentage(result.MarginalRatePercent))
	fmt.Fprintf(&buf, "Marginal Tax:          %s\n", FormatCurrency(result.MarginalTax))
	fmt.Fprintf(&buf, "Fixed Quota:           %s\n", FormatCurrency(result.FixedQuota))
	fmt.Fprintf(&buf, "Total ISR:             %s\n", FormatCurrency(result.TotalISR))
	fmt.Fprintf(&buf, "Effective Rate:        %s\n", FormatRate(result.EffectiveRate))

	return buf.Bytes(), nil
}
