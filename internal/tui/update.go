package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/isrmx/internal/calculation"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Calculate):
			if m.calculating {
				return m, nil
			}
			m.calculating = true
			return m, m.calculateCmd(m.input.Value())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case CalculationCompleteMsg:
		m.calculating = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		result := msg.Result
		m.result = &result
		m.resultFrom = msg.Input
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// calculateCmd parses the raw input and runs the calculation off the update loop.
func (m Model) calculateCmd(raw string) tea.Cmd {
	calc := m.calc
	return func() tea.Msg {
		input := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
		income, err := calculation.ParseIncome(input)
		if err != nil {
			return CalculationCompleteMsg{Input: raw, Err: err}
		}
		result, err := calc.Calculate(income)
		return CalculationCompleteMsg{Input: raw, Result: result, Err: err}
	}
}
