package grossup

import (
	"context"
	"fmt"
	"sort"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculator computes withholding results against the active tables.
type Calculator interface {
	Calculate(income decimal.Decimal) (domain.TaxResult, error)
	Tables() *calculation.Tables
}

// Solver finds the gross income behind a net salary.
type Solver struct {
	Calc    Calculator
	Options SolverOptions
}

// NewSolver creates a new gross-up solver
func NewSolver(calc Calculator, options SolverOptions) *Solver {
	return &Solver{
		Calc:    calc,
		Options: options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calc Calculator) *Solver {
	return NewSolver(calc, DefaultSolverOptions())
}

var two = decimal.NewFromInt(2)

// Solve returns the lowest gross income, on the grid set by the tolerance's
// decimal places, whose net income reaches the target.
//
// Net income only steps down where a table row starts: a subsidy row lowers
// the subsidy, an ISR row may start at a quota above the previous row's tax.
// Between consecutive row starts net rises strictly, so the solver walks those
// segments in ascending order and bisects inside the first one that reaches
// the target. The open-ended last segment grows its upper bound by doubling.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	places := int32(0)
	if exp := req.Tolerance.Exponent(); exp < 0 {
		places = -exp
	}
	unit := decimal.New(1, -places)

	iterations := 0
	evaluate := func(gross decimal.Decimal) (domain.TaxResult, bool, error) {
		if err := ctx.Err(); err != nil {
			return domain.TaxResult{}, false, err
		}
		if iterations >= req.MaxIterations {
			return domain.TaxResult{}, false, &GrossUpError{
				Operation: "solve",
				Message:   fmt.Sprintf("search did not converge after %d iterations", req.MaxIterations),
			}
		}
		iterations++
		tax, err := s.Calc.Calculate(gross)
		if err != nil {
			return tax, false, &GrossUpError{
				Operation: "solve",
				Message:   fmt.Sprintf("calculation failed for gross %s", gross),
				Cause:     err,
			}
		}
		return tax, tax.NetIncome.GreaterThanOrEqual(req.TargetNet), nil
	}
	result := func(tax domain.TaxResult, info string) *Result {
		return &Result{
			Request:         req,
			Success:         true,
			Iterations:      iterations,
			ConvergenceInfo: info,
			GrossIncome:     tax.GrossIncome,
			Tax:             tax,
			Overshoot:       tax.NetIncome.Sub(req.TargetNet),
		}
	}
	// bisect narrows [lo, hi] where lo falls short and hi reaches the target.
	bisect := func(lo, hi decimal.Decimal, hiTax domain.TaxResult) (*Result, error) {
		for hi.Sub(lo).GreaterThan(req.Tolerance) {
			mid := lo.Add(hi).Div(two).Round(places)
			if mid.LessThanOrEqual(lo) || mid.GreaterThanOrEqual(hi) {
				break
			}
			tax, ok, err := evaluate(mid)
			if err != nil {
				return nil, err
			}
			if ok {
				hi, hiTax = mid, tax
			} else {
				lo = mid
			}
		}
		return result(hiTax, fmt.Sprintf("Converged within $%s", req.Tolerance)), nil
	}

	starts := segmentStarts(s.Calc.Tables())
	for i, start := range starts {
		first := start.RoundCeil(places)
		tax, ok, err := evaluate(first)
		if err != nil {
			return nil, err
		}
		if ok {
			if first.IsZero() {
				return result(tax, "Target reached with no gross income"), nil
			}
			return result(tax, fmt.Sprintf("Target reached where the table row at %s starts", start)), nil
		}

		if i == len(starts)-1 {
			break
		}
		last := starts[i+1].Sub(unit).RoundCeil(places)
		if last.LessThanOrEqual(first) {
			continue
		}
		lastTax, ok, err := evaluate(last)
		if err != nil {
			return nil, err
		}
		if ok {
			return bisect(first, last, lastTax)
		}
	}

	// Open-ended segment: grow the upper bound until its net reaches the target.
	lo := starts[len(starts)-1].RoundCeil(places)
	hi := decimal.Max(req.TargetNet.RoundCeil(places), lo.Add(unit))
	for {
		if hi.GreaterThanOrEqual(domain.Unbounded) {
			return nil, &GrossUpError{
				Operation: "solve",
				Message:   fmt.Sprintf("no gross income below %s reaches net %s", domain.Unbounded, req.TargetNet),
			}
		}
		tax, ok, err := evaluate(hi)
		if err != nil {
			return nil, err
		}
		if ok {
			return bisect(lo, hi, tax)
		}
		lo = hi
		hi = hi.Mul(two)
	}
}

// segmentStarts lists zero and every ISR and subsidy lower limit, ascending
// and without duplicates.
func segmentStarts(t *calculation.Tables) []decimal.Decimal {
	starts := []decimal.Decimal{decimal.Zero}
	for _, r := range t.ISRRows() {
		starts = append(starts, r.LowerLimit)
	}
	for _, r := range t.SubsidyRows() {
		starts = append(starts, r.LowerLimit)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].LessThan(starts[j]) })

	out := starts[:1]
	for _, v := range starts[1:] {
		if v.GreaterThan(out[len(out)-1]) {
			out = append(out, v)
		}
	}
	return out
}
