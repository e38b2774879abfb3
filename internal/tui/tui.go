// Package tui is the interactive terminal timeline: rows down the side,
// time across, items as bars that can be band-selected, dragged between
// rows and resized from their right edge with the mouse.
package tui

import (
	"timeline-cli/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference(opts.Config.View.Glyphs)

	m, err := New(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	switch opts.Config.TUI.Mouse {
	case config.MouseAllMotion:
		progOpts = append(progOpts, tea.WithMouseAllMotion())
	case config.MouseOff:
	default:
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	_, err = tea.NewProgram(m, progOpts...).Run()
	return err
}
