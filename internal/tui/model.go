package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timeline-cli/internal/config"
	"timeline-cli/internal/itemview"
	"timeline-cli/internal/journal"
	"timeline-cli/internal/model"
	"timeline-cli/internal/seed"
	"timeline-cli/internal/store"
	"timeline-cli/internal/timeline"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	minZoom   = time.Hour
	maxZoom   = 7 * 24 * time.Hour
	flashTime = 400 * time.Millisecond
)

type Options struct {
	Session seed.Session
	Config  config.Config
	Logger  *slog.Logger
	// Journal receives every store mutation. Nil disables history.
	Journal *journal.Journal
}

type overlay int

const (
	overlayNone overlay = iota
	overlayDocs
	overlayHistory
)

type flashDoneMsg struct{ seq int }

// Model is the interactive timeline. Item views are mounted only for rows
// that currently fit on screen.
type Model struct {
	engine  *timeline.Engine
	journal *journal.Journal
	log     *slog.Logger
	ctx     context.Context
	cfg     config.Config

	rng    model.Range
	width  int
	height int
	scroll int

	views map[string]*itemview.View
	g     *gesture

	keys keyMap
	help help.Model

	overlay overlay
	docs    viewport.Model
	history list.Model

	status   string
	flash    map[string]bool
	flashSeq int
}

func New(opts Options) (Model, error) {
	st, err := store.New(opts.Session.Rows, opts.Session.Items)
	if err != nil {
		return Model{}, fmt.Errorf("load session: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &gesture{}
	engine := timeline.NewEngine(st,
		timeline.WithLogger(logger),
		// A drag starting from the same press hides the selection band.
		timeline.WithSelectionStopper(timeline.StopperFunc(g.dropBand)),
	)

	rng := opts.Session.Range
	if rng.Duration() <= 0 {
		rng = opts.Config.Range(time.Now())
	}
	m := Model{
		engine:  engine,
		journal: opts.Journal,
		log:     logger,
		ctx:     context.Background(),
		cfg:     opts.Config,
		rng:     rng,
		views:   map[string]*itemview.View{},
		g:       g,
		keys:    newKeyMap(),
		help:    help.New(),
		docs:    viewport.New(0, 0),
		history: newHistoryList(),
		flash:   map[string]bool{},
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) frame() frame {
	return layoutFrame(m.width, m.height, m.rng, m.engine.Store.Rows(), m.engine.Store.Items(), m.scroll, m.cfg.View.RowHeight)
}

// syncViews mounts views for items in visible rows, feeds them the current
// store state and unmounts everything that scrolled or moved away.
func (m Model) syncViews() {
	f := m.frame()
	want := map[string]bool{}
	for _, rf := range f.rows {
		for _, id := range rf.items {
			want[id] = true
		}
	}
	for _, it := range m.engine.Store.Items() {
		if !want[it.ID] {
			continue
		}
		if v, ok := m.views[it.ID]; ok {
			v.SetProps(it)
			continue
		}
		m.views[it.ID] = itemview.Mount(m.engine.Bus, it)
	}
	for id, v := range m.views {
		if !want[id] && id != m.g.id {
			v.Unmount()
			delete(m.views, id)
		}
	}
}

// Close releases every mounted view.
func (m Model) Close() {
	for id, v := range m.views {
		v.Unmount()
		delete(m.views, id)
	}
}

func (m *Model) pan(dir int) {
	step := max(m.rng.Duration()/8, 1)
	m.rng.Start += int64(dir) * step
	m.rng.End += int64(dir) * step
}

// zoom halves (dir > 0) or doubles (dir < 0) the visible duration around its
// centre, within [minZoom, maxZoom].
func (m *Model) zoom(dir int) {
	d := m.rng.Duration()
	switch {
	case dir > 0:
		d /= 2
	case dir < 0:
		d *= 2
	}
	d = min(max(d, minZoom.Milliseconds()), maxZoom.Milliseconds())
	mid := m.rng.Start + m.rng.Duration()/2
	m.rng = model.Range{Start: mid - d/2, End: mid - d/2 + d}
}

func (m *Model) scrollRows(delta int) {
	rows := len(m.engine.Store.Rows())
	m.scroll = min(max(m.scroll+delta, 0), max(rows-1, 0))
}

// observe records a mutating outcome in the journal and updates the status
// line.
func (m *Model) observe(gestureName string, out timeline.Outcome) {
	if m.journal != nil {
		if _, err := m.journal.Observe(m.ctx, gestureName, out); err != nil {
			m.log.Warn("journal write failed", "gesture", gestureName, "err", err)
		}
	}
	if s := describe(out); s != "" {
		m.status = s
	}
}

func describe(out timeline.Outcome) string {
	switch out.Kind {
	case timeline.Committed:
		if out.RowID == "" {
			return fmt.Sprintf("resized %s", strings.Join(out.ItemIDs, ", "))
		}
		return fmt.Sprintf("moved %s to %s", strings.Join(out.ItemIDs, ", "), out.RowID)
	case timeline.Aborted:
		return "drop discarded: " + out.Reason
	case timeline.Cancelled:
		return "cancelled"
	case timeline.SelectionApplied:
		return fmt.Sprintf("selected %s", strings.Join(out.ItemIDs, ", "))
	case timeline.SelectionCleared:
		return fmt.Sprintf("cleared %d selected", len(out.ItemIDs))
	case timeline.Started:
		if out.Group {
			return fmt.Sprintf("dragging %d items", len(out.ItemIDs))
		}
		if out.ActiveID != "" {
			return "dragging " + out.ActiveID
		}
	case timeline.Ignored:
		if out.Reason == timeline.ReasonDragInProgress || out.Reason == timeline.ReasonDisabledItem {
			return out.Reason
		}
	}
	return ""
}

// startFlash highlights ids briefly. Items that were moving with a selected
// drag skip it, they already track the pointer.
func (m *Model) startFlash(ids []string, suppressed map[string]bool) tea.Cmd {
	fl := map[string]bool{}
	for _, id := range ids {
		if !suppressed[id] {
			fl[id] = true
		}
	}
	if len(fl) == 0 {
		return nil
	}
	m.flash = fl
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(flashTime, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

func (m Model) suppressedViews() map[string]bool {
	out := map[string]bool{}
	for id, v := range m.views {
		if v.TransitionsSuppressed() {
			out[id] = true
		}
	}
	return out
}
