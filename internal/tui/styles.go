package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF4672")
	ColorMuted   = lipgloss.Color("#626262")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	MetricLabelStyle    = lipgloss.NewStyle().Foreground(ColorMuted).Width(22)
	MetricValueStyle    = lipgloss.NewStyle().Bold(true)
	MetricPositiveStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	MetricNegativeStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorDanger)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
