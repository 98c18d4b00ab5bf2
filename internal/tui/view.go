package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/rgehrsitz/isrmx/internal/output"
)

// View renders the current state of the application
func (m Model) View() string {
	sections := []string{
		TitleStyle.Render("ISRMX - Monthly Withholding Calculator"),
		m.input.View(),
	}

	switch {
	case m.err != nil:
		sections = append(sections, ErrorStyle.Render("Error: "+m.err.Error()))
	case m.calculating:
		sections = append(sections, HelpDescStyle.Render("Calculating..."))
	}

	if m.result != nil {
		sections = append(sections, m.renderResult(*m.result))
	}

	sections = append(sections, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderResult(r domain.TaxResult) string {
	line := func(label string, value string, style lipgloss.Style) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, MetricLabelStyle.Render(label), style.Render(value))
	}

	rows := []string{
		line("Gross Salary", output.FormatCurrency(r.GrossIncome), MetricValueStyle),
		line("ISR", "-"+output.FormatCurrency(r.TotalISR), MetricNegativeStyle),
		line("IMSS", "-"+output.FormatCurrency(r.Contribution), MetricNegativeStyle),
		line("Employment Subsidy", "+"+output.FormatCurrency(r.Subsidy), MetricValueStyle),
		line("Net Salary", output.FormatCurrency(r.NetIncome), MetricPositiveStyle),
		"",
		line("Lower Limit", output.FormatCurrency(r.LowerLimit), MetricValueStyle),
		line("Excess Over Lower", output.FormatCurrency(r.ExcessOverLowerLimit), MetricValueStyle),
		line("Marginal Rate", output.FormatPercentage(r.MarginalRatePercent), MetricValueStyle),
		line("Marginal Tax", output.FormatCurrency(r.MarginalTax), MetricValueStyle),
		line("Fixed Quota", output.FormatCurrency(r.FixedQuota), MetricValueStyle),
		line("Effective Rate", output.FormatRate(r.EffectiveRate), MetricValueStyle),
	}

	title := fmt.Sprintf("Fiscal year %d", r.FiscalYear)
	if m.resultFrom != "" {
		title = fmt.Sprintf("%s, income %s", title, strings.TrimSpace(m.resultFrom))
	}
	return BorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{HelpDescStyle.Render(title)}, rows...)...))
}

func (m Model) renderHelp() string {
	return HelpDescStyle.Render(fmt.Sprintf("%s %s • %s %s",
		keys.Calculate.Help().Key, keys.Calculate.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc))
}
