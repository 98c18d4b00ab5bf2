package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders one calculation result.
type Formatter interface {
	Name() string
	Format(result domain.TaxResult) ([]byte, error)
}

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{Pretty: true},
	"csv":     CSVFormatter{},
}

// GetFormatterByName returns the named formatter or nil.
func GetFormatterByName(name string) Formatter {
	return formatters[strings.ToLower(name)]
}

// FormatterNames lists the registered formatter names.
func FormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatCurrency renders an amount as MXN with thousands separators, e.g.
// $10,000.00 or -$5.25. The amount is rounded to the centavo.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), frac)
}

// FormatPercentage renders a value that is already expressed in percent.
func FormatPercentage(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// FormatRate renders a fraction (0.1088) as a percentage (10.88%).
func FormatRate(rate decimal.Decimal) string {
	return FormatPercentage(rate.Mul(decimal.NewFromInt(100)))
}
