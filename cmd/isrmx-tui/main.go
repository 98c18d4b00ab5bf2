package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/config"
	"github.com/rgehrsitz/isrmx/internal/logging"
	"github.com/rgehrsitz/isrmx/internal/tui"
)

func main() {
	settings, err := config.LoadSettings("")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Optional tables file overrides the settings
	tablesPath := settings.Tables.Path
	if len(os.Args) > 1 {
		tablesPath = os.Args[1]
		if _, err := os.Stat(tablesPath); os.IsNotExist(err) {
			fmt.Printf("Error: tables file not found: %s\n", tablesPath)
			os.Exit(1)
		}
	}

	tables, err := config.NewTablesParser().Load(tablesPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Warnings and errors only while the alternate screen is active.
	var opts []calculation.Option
	if log, err := logging.New(os.Stderr, "tui", "warn"); err == nil {
		opts = append(opts, calculation.WithLogger(log))
	}
	calc, err := calculation.NewCalculator(tables, opts...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.NewModel(calc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
