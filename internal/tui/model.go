package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculator computes a withholding result for a gross monthly income.
type Calculator interface {
	Calculate(income decimal.Decimal) (domain.TaxResult, error)
}

type keyMap struct {
	Calculate key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Calculate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "calculate")),
	Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

// Model is the interactive withholding calculator.
type Model struct {
	calc  Calculator
	input textinput.Model

	// Last successful calculation and the input that produced it
	result     *domain.TaxResult
	resultFrom string

	err         error
	calculating bool

	width  int
	height int
}

// NewModel creates a calculator model with a focused income input.
func NewModel(calc Calculator) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g., 10000.00"
	ti.Prompt = "Gross monthly income: $"
	ti.CharLimit = 18
	ti.Width = 20
	ti.Focus()

	return Model{calc: calc, input: ti}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Result returns the last successful calculation, if any.
func (m Model) Result() (domain.TaxResult, bool) {
	if m.result == nil {
		return domain.TaxResult{}, false
	}
	return *m.result, true
}

// Err returns the error from the last calculation attempt.
func (m Model) Err() error {
	return m.err
}
