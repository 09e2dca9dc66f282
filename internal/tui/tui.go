package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// Run starts the TUI for the given scan setting and returns the final
// result, or an error if the scan or the TUI itself failed.
func Run(setting *scan.Setting) (*scan.Result, error) {
	model, err := New(setting)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI model: %w", err)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := finalModel.(Model); ok {
		if m.state == StateError {
			return nil, fmt.Errorf("scan failed")
		}
		return m.result, nil
	}

	return nil, nil
}
