package calculation

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Logger is the minimal logging surface the calculator needs.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// Observer receives one callback per Calculate call. bracket is the ISR row
// index used, "-1" when the call failed.
type Observer interface {
	ObserveCalculation(bracket string, d time.Duration, err error)
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the time source used to stamp ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// WithLogger sets the logger; nil keeps NopLogger.
func WithLogger(l Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(c *Calculator) { c.observer = o }
}

// Calculator composes ISR, contribution and subsidy into a TaxResult. It is
// safe for concurrent use; the active Tables can be replaced with SwapTables.
// Everything else is fixed by the Options given to NewCalculator.
type Calculator struct {
	tables   atomic.Pointer[Tables]
	now      func() time.Time
	observer Observer
	logger   Logger
}

// NewCalculator creates a calculator over validated tables.
func NewCalculator(tables *Tables, opts ...Option) (*Calculator, error) {
	if tables == nil {
		return nil, fmt.Errorf("%w: no tables supplied", domain.ErrMalformedTable)
	}
	c := &Calculator{
		now:    time.Now,
		logger: NopLogger{},
	}
	c.tables.Store(tables)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tables returns the active table set.
func (c *Calculator) Tables() *Tables {
	return c.tables.Load()
}

// SwapTables atomically replaces the active tables and returns the previous
// set. Calls already running keep the set they started with.
func (c *Calculator) SwapTables(next *Tables) (*Tables, error) {
	if next == nil {
		return nil, fmt.Errorf("%w: no tables supplied", domain.ErrMalformedTable)
	}
	prev := c.tables.Swap(next)
	c.logger.Infof("fiscal tables swapped: %d -> %d", prev.Year(), next.Year())
	return prev, nil
}

// Calculate computes the monthly withholding breakdown for a gross income.
// The only failure is domain.ErrInvalidIncome for a negative amount.
func (c *Calculator) Calculate(income decimal.Decimal) (domain.TaxResult, error) {
	start := time.Now()
	t := c.tables.Load()

	if income.IsNegative() {
		err := fmt.Errorf("%w: %s is negative", domain.ErrInvalidIncome, income)
		c.logger.Warnf("rejected income %s", income)
		c.observe("-1", start, err)
		return domain.TaxResult{}, err
	}

	idx := t.isrIndex(income)
	row := t.isr[idx]
	isr := ComputeISR(row, income)
	subsidy := t.subsidy[t.subsidyIndex(income)].Subsidy
	contribution := ComputeContribution(income, t.rule)

	net := income.Sub(isr.TotalISR).Sub(contribution).Add(subsidy)
	effective := decimal.Zero
	if income.IsPositive() {
		effective = isr.TotalISR.Add(contribution).Sub(subsidy).Div(income)
	}

	result := domain.TaxResult{
		FiscalYear:           t.year,
		GrossIncome:          income,
		LowerLimit:           row.LowerLimit,
		ExcessOverLowerLimit: isr.Excess,
		MarginalRatePercent:  row.MarginalRate.Mul(decimal.NewFromInt(100)),
		MarginalTax:          isr.MarginalTax,
		FixedQuota:           row.FixedQuota,
		TotalISR:             isr.TotalISR,
		Contribution:         contribution,
		Subsidy:              subsidy,
		NetIncome:            net,
		EffectiveRate:        effective,
		ComputedAt:           c.now(),
	}

	c.logger.Debugf("income %s: bracket %d (lower %s), ISR %s, contribution %s, subsidy %s, net %s",
		income, idx, row.LowerLimit, isr.TotalISR, contribution, subsidy, net)
	c.observe(strconv.Itoa(idx), start, nil)
	return result, nil
}

func (c *Calculator) observe(bracket string, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveCalculation(bracket, time.Since(start), err)
	}
}

// ParseIncome parses a decimal string such as "10000.50". Non-finite
// literals like NaN or Inf are invalid income.
func ParseIncome(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal amount", domain.ErrInvalidIncome, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", domain.ErrInvalidIncome, d)
	}
	return d, nil
}
