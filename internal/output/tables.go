package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

func upperLimitText(upper decimal.Decimal, openEnded bool) string {
	if openEnded {
		return "and above"
	}
	return FormatCurrency(upper)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

// FormatFiscalTables renders the ISR table, subsidy table and contribution
// rule for `isrmx table`.
func FormatFiscalTables(ft domain.FiscalTables) []byte {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("ISR %s TABLE %d (%s)", strings.ToUpper(ft.Period), ft.Year, ft.Jurisdiction)))
	isr := newTable("Lower Limit", "Upper Limit", "Fixed Quota", "Rate on Excess")
	for _, r := range ft.ISR {
		isr.Row(FormatCurrency(r.LowerLimit), upperLimitText(r.UpperLimit, r.IsOpenEnded()),
			FormatCurrency(r.FixedQuota), FormatRate(r.MarginalRate))
	}
	fmt.Fprintln(&b, isr.Render())
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, titleStyle.Render("EMPLOYMENT SUBSIDY"))
	sub := newTable("Lower Limit", "Upper Limit", "Subsidy")
	for _, r := range ft.Subsidy {
		sub.Row(FormatCurrency(r.LowerLimit), upperLimitText(r.UpperLimit, r.IsOpenEnded()), FormatCurrency(r.Subsidy))
	}
	fmt.Fprintln(&b, sub.Render())
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, titleStyle.Render("IMSS EMPLOYEE QUOTA"))
	fmt.Fprintf(&b, "Rate:                   %s\n", FormatRate(ft.Contribution.Rate))
	fmt.Fprintf(&b, "Max Contributable Base: %s\n", FormatCurrency(ft.Contribution.MaxContributableBase))
	fmt.Fprintf(&b, "Max Contribution:       %s\n", FormatCurrency(ft.Contribution.MaxContribution()))

	return []byte(b.String())
}

// FormatHistory renders stored calculations, newest first as given.
func FormatHistory(records []domain.TaxRecord) []byte {
	if len(records) == 0 {
		return []byte("No stored calculations.\n")
	}
	t := newTable("ID", "Date", "Gross", "ISR", "IMSS", "Subsidy", "Net")
	for _, rec := range records {
		r := rec.Result
		t.Row(rec.ID.String(), r.ComputedAt.Format("2006-01-02 15:04"),
			FormatCurrency(r.GrossIncome), FormatCurrency(r.TotalISR), FormatCurrency(r.Contribution),
			FormatCurrency(r.Subsidy), FormatCurrency(r.NetIncome))
	}
	return []byte(t.Render() + "\n")
}
