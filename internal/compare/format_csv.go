package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Gross",
		"Type",
		"ISR",
		"IMSS",
		"Subsidy",
		"Net",
		"Gross Diff from Base",
		"Net Diff from Base",
		"Net % Change",
		"Withholding Diff from Base",
		"Retention Rate",
		"Bracket Changed",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}
	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, rowType string) []string {
	r := result.Result.Rounded()
	return []string{
		r.GrossIncome.StringFixed(2),
		rowType,
		r.TotalISR.StringFixed(2),
		r.Contribution.StringFixed(2),
		r.Subsidy.StringFixed(2),
		r.NetIncome.StringFixed(2),
		result.GrossDiffFromBase.StringFixed(2),
		result.NetDiffFromBase.StringFixed(2),
		result.NetPctFromBase.StringFixed(2),
		result.WithholdingDiffFromBase.StringFixed(2),
		result.RetentionRate.StringFixed(4),
		strconv.FormatBool(result.BracketChanged),
	}
}
