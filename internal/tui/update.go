package tui

import (
	"timeline-cli/internal/journal"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.sizeOverlays()
		if m.overlay == overlayDocs {
			m.refreshDocs()
		}
		m.syncViews()
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = map[string]bool{}
		}
		return m, nil

	case tea.MouseMsg:
		if m.overlay != overlayNone {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.overlay != overlayNone {
			return m.updateOverlay(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelGesture()
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		switch m.g.kind {
		case gestureDrag, gestureResize:
			m.cancelGesture()
			m.status = "cancelled"
		case gestureBand:
			m.cancelGesture()
		default:
			m.observe(journal.GestureSelection, m.engine.Selection.Clear())
			m.syncViews()
		}
		return m, nil

	case key.Matches(msg, m.keys.SelectAll):
		m.observe(journal.GestureSelection, m.engine.Selection.SelectAll())
		m.syncViews()
		return m, nil

	case key.Matches(msg, m.keys.PanLeft):
		m.pan(-1)
	case key.Matches(msg, m.keys.PanRight):
		m.pan(1)
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(-1)
	case key.Matches(msg, m.keys.Up):
		m.scrollRows(-1)
	case key.Matches(msg, m.keys.Down):
		m.scrollRows(1)

	case key.Matches(msg, m.keys.Help):
		if m.g.kind != gestureNone {
			return m, nil
		}
		m.openDocs()
		return m, nil

	case key.Matches(msg, m.keys.History):
		if m.g.kind != gestureNone {
			return m, nil
		}
		return m, m.openHistory()

	default:
		return m, nil
	}
	m.syncViews()
	return m, nil
}
