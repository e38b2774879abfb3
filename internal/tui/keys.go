package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	History   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	SelectAll key.Binding
	Escape    key.Binding
	Up        key.Binding
	Down      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		PanLeft:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "earlier")),
		PanRight:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "later")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel/clear")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "rows up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "rows down")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.History, k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut, k.SelectAll, k.Escape, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut},
		{k.Up, k.Down, k.SelectAll, k.Escape},
		{k.Help, k.History, k.Quit},
	}
}
