package tui

import (
	"fmt"
	"strings"
	"time"

	"timeline-cli/internal/docs"
	"timeline-cli/internal/journal"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const historyLimit = 200

// historyItem is one journal entry in the history overlay.
type historyItem struct {
	entry journal.Entry
}

func (h historyItem) FilterValue() string {
	return h.entry.Kind + " " + strings.Join(h.entry.ItemIDs, " ")
}

func (h historyItem) Title() string {
	e := h.entry
	switch {
	case e.RowID != "":
		return fmt.Sprintf("%s %s → %s", e.Kind, strings.Join(e.ItemIDs, ", "), e.RowID)
	case len(e.ItemIDs) > 0:
		return fmt.Sprintf("%s %s", e.Kind, strings.Join(e.ItemIDs, ", "))
	}
	return e.Kind
}

func (h historyItem) Description() string {
	return h.entry.At.Local().Format(time.TimeOnly)
}

func newHistoryList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "History"
	// The overlay draws its own title and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("entry", "entries")
	// esc closes the overlay instead of quitting.
	l.KeyMap.Quit.SetKeys("q")

	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}

// openHistory loads the newest journal entries into the history list.
func (m *Model) openHistory() tea.Cmd {
	var entries []journal.Entry
	if m.journal != nil {
		got, err := m.journal.Recent(m.ctx, historyLimit)
		if err != nil {
			m.log.Warn("journal read failed", "err", err)
			m.status = "history unavailable"
			return nil
		}
		entries = got
	}
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItem{entry: e})
	}
	m.overlay = overlayHistory
	m.sizeOverlays()
	return m.history.SetItems(items)
}

func (m *Model) openDocs() {
	m.overlay = overlayDocs
	m.sizeOverlays()
	m.refreshDocs()
	m.docs.GotoTop()
}

func (m *Model) refreshDocs() {
	md, ok := docs.Get(docs.DefaultTopic)
	if !ok {
		m.docs.SetContent("no help available")
		return
	}
	m.docs.SetContent(renderMarkdown(md, m.docs.Width))
}

// sizeOverlays fits the overlays between the title line and the footer.
func (m *Model) sizeOverlays() {
	w := max(m.width-2, 1)
	h := max(m.height-headerLines-footerLines, 1)
	m.docs.Width = w
	m.docs.Height = h
	m.history.SetSize(w, h)
}

func (m Model) updateOverlay(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.overlay {
	case overlayHistory:
		if m.history.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "esc", "q", "h":
			m.overlay = overlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	case overlayDocs:
		switch msg.String() {
		case "esc", "q", "?":
			m.overlay = overlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.docs, cmd = m.docs.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) overlayView() string {
	var title, body string
	switch m.overlay {
	case overlayHistory:
		title = fmt.Sprintf("History (%d)", len(m.history.Items()))
		body = m.history.View()
		if len(m.history.Items()) == 0 {
			body = styleMuted().Render("nothing recorded yet")
		}
	case overlayDocs:
		title = docs.Title(docs.DefaultTopic)
		body = m.docs.View()
	}
	out := styleTitle().Render(title) + "\n\n" + body
	return normalizePane(out, m.width, m.height-footerLines)
}
