package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/rgehrsitz/isrmx/internal/domain"
)

var csvHeader = []string{
	"FiscalYear", "GrossIncome", "LowerLimit", "ExcessOverLowerLimit", "MarginalRatePercent",
	"MarginalTax", "FixedQuota", "TotalISR", "Contribution", "Subsidy", "NetIncome",
	"EffectiveRate", "ComputedAt",
}

// CSVFormatter writes a header and one centavo-rounded row.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result domain.TaxResult) ([]byte, error) {
	return FormatCSV([]domain.TaxResult{result})
}

// FormatCSV writes one row per result, e.g. for `isrmx history --format csv`.
func FormatCSV(results []domain.TaxResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, result := range results {
		r := result.Rounded()
		row := []string{
			strconv.Itoa(r.FiscalYear),
			r.GrossIncome.StringFixed(2),
			r.LowerLimit.StringFixed(2),
			r.ExcessOverLowerLimit.StringFixed(2),
			r.MarginalRatePercent.StringFixed(2),
			r.MarginalTax.StringFixed(2),
			r.FixedQuota.StringFixed(2),
			r.TotalISR.StringFixed(2),
			r.Contribution.StringFixed(2),
			r.Subsidy.StringFixed(2),
			r.NetIncome.StringFixed(2),
			r.EffectiveRate.StringFixed(4),
			r.ComputedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
