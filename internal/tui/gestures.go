package tui

import (
	"timeline-cli/internal/journal"
	"timeline-cli/internal/model"
	"timeline-cli/internal/timeline"

	tea "github.com/charmbracelet/bubbletea"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
	gestureBand
)

// gesture tracks one press-to-release pointer interaction in screen cells.
type gesture struct {
	kind      gestureKind
	id        string
	origin    model.Span
	candidate model.Span
	moved     bool
	overRow   string
	x0, y0    int
	x1, y1    int
}

func (g *gesture) reset() { *g = gesture{} }

func (g *gesture) dropBand() {
	if g.kind == gestureBand {
		g.reset()
	}
}

type hit struct {
	id     string
	handle bool
}

// hitItem finds the item drawn at screen cell (x, y).
func (m Model) hitItem(f frame, x, y int) (hit, bool) {
	if !f.inBody(x, y) {
		return hit{}, false
	}
	rf, ok := f.rowAt(y)
	if !ok {
		return hit{}, false
	}
	lane := (y - rf.top) / f.laneH
	col := x - f.bodyX
	for _, id := range rf.items {
		if rf.laneOf[id] != lane {
			continue
		}
		v := m.views[id]
		if v == nil {
			continue
		}
		c0, c1, ok := f.scale.cells(v.Span())
		if !ok || col < c0 || col > c1 {
			continue
		}
		return hit{id: id, handle: c1 > c0 && col == c1}, true
	}
	return hit{}, false
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollRows(-1)
		m.syncViews()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scrollRows(1)
		m.syncViews()
		return m, nil
	}

	f := m.frame()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		return m.pointerDown(f, msg), nil
	case tea.MouseActionMotion:
		return m.pointerMove(f, msg), nil
	case tea.MouseActionRelease:
		return m.pointerUp(f, msg)
	}
	return m, nil
}

func (m Model) pointerDown(f frame, msg tea.MouseMsg) Model {
	e := m.engine
	if m.g.kind != gestureNone {
		// A release went missing (pointer left the window).
		m.cancelGesture()
	}
	if h, ok := m.hitItem(f, msg.X, msg.Y); ok {
		// Any press on an item holds the gate until release, so a disabled
		// item neither drags nor starts a band.
		e.Gate.PointerDown(true)
		if m.views[h.id].Disabled() {
			m.status = h.id + " is disabled"
			return m
		}
		start := m.views[h.id].Span()
		if h.handle {
			out := e.Drag.OnResizeStart(timeline.ResizeStartEvent{ActiveID: h.id})
			if out.Kind == timeline.Started {
				*m.g = gesture{kind: gestureResize, id: h.id, origin: start, candidate: start, x0: msg.X, y0: msg.Y}
				m.status = "resizing " + h.id
			}
			return m
		}
		out := e.Drag.OnDragStart(timeline.DragStartEvent{ActiveID: h.id})
		m.observe(journal.GestureDrag, out)
		if out.Kind == timeline.Started {
			*m.g = gesture{kind: gestureDrag, id: h.id, origin: start, candidate: start, x0: msg.X, y0: msg.Y}
			if rf, ok := f.rowAt(msg.Y); ok {
				m.g.overRow = rf.row.ID
			}
		}
		return m
	}

	if !f.inBody(msg.X, msg.Y) {
		return m
	}
	out := e.Selection.OnSelectGestureStart(timeline.Modifiers{Ctrl: msg.Ctrl || msg.Alt})
	m.observe(journal.GestureSelection, out)
	if out.Kind != timeline.Ignored {
		*m.g = gesture{kind: gestureBand, x0: msg.X, y0: msg.Y, x1: msg.X, y1: msg.Y}
	}
	m.syncViews()
	return m
}

func (m Model) pointerMove(f frame, msg tea.MouseMsg) Model {
	g := m.g
	dx, dy := msg.X-g.x0, msg.Y-g.y0
	unit := m.cfg.View.Snap.Milliseconds()
	switch g.kind {
	case gestureDrag:
		cand := g.origin
		if dx != 0 {
			start := snapTo(g.origin.Start+int64(dx)*f.scale.msPerCell, unit)
			cand = model.Span{Start: start, End: start + g.origin.Duration()}
		}
		// The candidate tracks the pointer even when a zero delta is ignored.
		m.engine.Drag.OnDragMove(timeline.DragMoveEvent{
			ActiveID:      g.id,
			Delta:         &timeline.Delta{X: dx, Y: dy},
			CandidateSpan: timeline.FixedSpan(cand),
		})
		g.moved = dx != 0 || dy != 0
		g.candidate = cand
		if v := m.views[g.id]; v != nil {
			v.Follow(cand)
		}
		g.overRow = ""
		if rf, ok := f.rowAt(msg.Y); ok && f.inBody(max(msg.X, f.bodyX), msg.Y) {
			g.overRow = rf.row.ID
		}
	case gestureResize:
		end := snapTo(g.origin.End+int64(dx)*f.scale.msPerCell, unit)
		end = max(end, g.origin.Start+f.scale.msPerCell)
		g.candidate = model.Span{Start: g.origin.Start, End: end}
		g.moved = dx != 0
		if v := m.views[g.id]; v != nil {
			v.Follow(g.candidate)
		}
	case gestureBand:
		g.x1, g.y1 = msg.X, msg.Y
	}
	return m
}

func (m Model) pointerUp(f frame, msg tea.MouseMsg) (Model, tea.Cmd) {
	e := m.engine
	g := m.g
	defer e.Gate.PointerUp()

	var cmd tea.Cmd
	switch g.kind {
	case gestureDrag:
		m = m.pointerMove(f, msg)
		if !g.moved {
			m.observe(journal.GestureDrag, e.Drag.Cancel())
			m.status = ""
			break
		}
		suppressed := m.suppressedViews()
		out := e.Drag.OnDragEnd(timeline.DragEndEvent{
			ActiveID:      g.id,
			OverRowID:     g.overRow,
			CandidateSpan: timeline.FixedSpan(g.candidate),
		})
		m.observe(journal.GestureDrag, out)
		if out.Kind == timeline.Committed {
			cmd = m.startFlash(out.ItemIDs, suppressed)
		}
	case gestureResize:
		m = m.pointerMove(f, msg)
		if !g.moved {
			m.observe(journal.GestureResize, e.Drag.Cancel())
			break
		}
		out := e.Drag.OnResizeEnd(timeline.ResizeEndEvent{ActiveID: g.id, CandidateSpan: timeline.FixedSpan(g.candidate)})
		m.observe(journal.GestureResize, out)
		if out.Kind == timeline.Committed {
			cmd = m.startFlash(out.ItemIDs, nil)
		}
	case gestureBand:
		g.x1, g.y1 = msg.X, msg.Y
		out := e.Selection.OnSelectGestureEnd(m.bandHits(f))
		m.observe(journal.GestureSelection, out)
	}
	g.reset()
	m.dropFollowers()
	m.syncViews()
	return m, cmd
}

// cancelGesture abandons whatever the pointer was doing.
func (m *Model) cancelGesture() {
	e := m.engine
	switch m.g.kind {
	case gestureDrag, gestureResize:
		m.observe(journal.GestureDrag, e.Drag.Cancel())
	case gestureBand:
		e.Selection.Stop()
	}
	e.Gate.PointerUp()
	m.g.reset()
	m.dropFollowers()
	m.syncViews()
}

// dropFollowers clears pointer-pinned spans left on views when a gesture
// ended without a store change.
func (m Model) dropFollowers() {
	for _, it := range m.engine.Store.Items() {
		if v := m.views[it.ID]; v != nil {
			v.SetProps(it)
			v.Unfollow()
		}
	}
}

// bandRect is the band in screen cells, corners inclusive.
func (g gesture) bandRect() (x0, y0, x1, y1 int) {
	return min(g.x0, g.x1), min(g.y0, g.y1), max(g.x0, g.x1), max(g.y0, g.y1)
}

// bandHits lists the items whose drawn cells touch the band, in store order.
func (m Model) bandHits(f frame) []string {
	bx0, by0, bx1, by1 := m.g.bandRect()
	var hits []string
	for _, rf := range f.rows {
		for _, id := range rf.items {
			v := m.views[id]
			if v == nil {
				continue
			}
			c0, c1, ok := f.scale.cells(v.Span())
			if !ok {
				continue
			}
			top := rf.top + rf.laneOf[id]*f.laneH
			bottom := top + f.laneH - 1
			left, right := f.bodyX+c0, f.bodyX+c1
			if right < bx0 || left > bx1 || bottom < by0 || top > by1 {
				continue
			}
			hits = append(hits, id)
		}
	}
	return hits
}
