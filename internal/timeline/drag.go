package timeline

import (
	"log/slog"

	"timeline-cli/internal/broadcast"
	"timeline-cli/internal/model"
	"timeline-cli/internal/store"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	// StateDragArmed: drag started, no effective move yet.
	StateDragArmed
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateDragArmed:
		return "drag-armed"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// offset is a selected item's placement relative to the start of the item
// that initiated the drag, captured at drag start.
type offset struct {
	relStart int64
	relEnd   int64
	rowID    string
}

// dragSession lives from OnDragStart to the terminal transition and is
// owned by the coordinator alone.
type dragSession struct {
	id       string
	activeID string
	group    bool
	offsets  map[string]offset
	// order lists the selected members in store collection order at drag
	// start; it fixes batch order.
	order []string
}

// Drag coordinates drag and resize gestures against the store.
//
//	Idle -> DragArmed -> Dragging -> (commit | abort | cancel) -> Idle
//	Idle -> Resizing -> commit -> Idle
//
// Only terminal transitions mutate the store. Moves publish live positions
// on the bus and never touch it.
type Drag struct {
	store   *store.Store
	bus     *broadcast.Bus
	gate    *Gate
	log     *slog.Logger
	newID   func() string
	state   State
	session *dragSession
	// resizeID is the item being resized while state == StateResizing.
	resizeID string
}

type DragOption func(*Drag)

// WithSessionIDs overrides the session id generator (tests).
func WithSessionIDs(fn func() string) DragOption {
	return func(d *Drag) { d.newID = fn }
}

func NewDrag(st *store.Store, bus *broadcast.Bus, gate *Gate, logger *slog.Logger, opts ...DragOption) *Drag {
	d := &Drag{
		store: st,
		bus:   bus,
		gate:  gate,
		log:   orDiscard(logger),
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Drag) State() State { return d.state }

// ActiveID is the item under the pointer of the current drag, if any.
func (d *Drag) ActiveID() string {
	if d.session == nil {
		return ""
	}
	return d.session.activeID
}

// GroupMembers returns the ids moving with the current drag in store
// collection order. Empty for single drags.
func (d *Drag) GroupMembers() []string {
	if d.session == nil || !d.session.group {
		return nil
	}
	return append([]string(nil), d.session.order...)
}

func (d *Drag) OnDragStart(ev DragStartEvent) Outcome {
	if d.session != nil {
		// The collaborator never ended the previous gesture.
		d.finish(false)
	}
	if d.gate != nil {
		d.gate.raise()
	}

	active, ok := d.store.Item(ev.ActiveID)
	if !ok {
		d.log.Debug("drag start ignored", "item", ev.ActiveID, "reason", ReasonUnknownItem)
		return ignored(ReasonUnknownItem)
	}
	if active.Disabled {
		d.log.Debug("drag start ignored", "item", ev.ActiveID, "reason", ReasonDisabledItem)
		return ignored(ReasonDisabledItem)
	}

	sess := &dragSession{
		id:       d.newID(),
		activeID: active.ID,
		offsets:  map[string]offset{},
	}
	selected := d.selectedEnabled()
	if active.Selected && len(selected) > 1 {
		sess.group = true
		for _, it := range selected {
			sess.offsets[it.ID] = offset{
				relStart: it.Span.Start - active.Span.Start,
				relEnd:   it.Span.End - active.Span.Start,
				rowID:    it.RowID,
			}
			sess.order = append(sess.order, it.ID)
		}
	}
	d.session = sess
	d.state = StateDragArmed

	members := sess.order
	if !sess.group {
		members = []string{active.ID}
	}
	d.bus.DragStart.Publish(broadcast.DragStarted{
		SessionID: sess.id,
		ItemID:    active.ID,
		Group:     sess.group,
		Members:   append([]string(nil), members...),
	})
	d.log.Debug("drag started", "session", sess.id, "item", active.ID, "group", sess.group, "members", len(members))
	return Outcome{Kind: Started, SessionID: sess.id, ActiveID: active.ID, Group: sess.group, ItemIDs: members}
}

func (d *Drag) selectedEnabled() []model.Item {
	var out []model.Item
	for _, it := range d.store.Items() {
		if it.Selected && !it.Disabled {
			out = append(out, it)
		}
	}
	return out
}

func (d *Drag) OnDragMove(ev DragMoveEvent) Outcome {
	sess := d.session
	if sess == nil {
		return ignored(ReasonNoSession)
	}
	if ev.ActiveID != sess.activeID {
		return ignored(ReasonStaleActive)
	}
	if ev.Delta.degenerate() {
		return ignored(ReasonNoDelta)
	}
	candidate, ok := ev.CandidateSpan.resolve()
	if !ok {
		return ignored(ReasonNoSpan)
	}
	d.state = StateDragging

	out := Outcome{Kind: Moved, SessionID: sess.id, ActiveID: sess.activeID, Group: sess.group}
	if !sess.group {
		return out
	}

	positions := d.livePositions(sess, candidate)
	if len(positions) > 0 {
		d.bus.GroupDrag.Publish(broadcast.GroupDragPositions{
			SessionID: sess.id,
			ActiveID:  sess.activeID,
			Positions: positions,
		})
	}
	out.Positions = positions
	return out
}

// livePositions places every other group member relative to the candidate
// start of the active item. Items that vanished from the store are skipped.
func (d *Drag) livePositions(sess *dragSession, candidate model.Span) []model.LivePosition {
	positions := make([]model.LivePosition, 0, len(sess.order))
	for _, id := range sess.order {
		if id == sess.activeID {
			continue
		}
		off, ok := sess.offsets[id]
		if !ok {
			continue
		}
		it, ok := d.store.Item(id)
		if !ok || it.Disabled {
			continue
		}
		positions = append(positions, model.LivePosition{
			ID:       id,
			Span:     model.Span{Start: candidate.Start + off.relStart, End: candidate.Start + off.relEnd},
			Selected: it.Selected,
			RowID:    it.RowID,
			Disabled: it.Disabled,
		})
	}
	return positions
}

func (d *Drag) OnDragEnd(ev DragEndEvent) Outcome {
	sess := d.session
	if sess == nil {
		return ignored(ReasonNoSession)
	}
	if ev.ActiveID != sess.activeID {
		d.finish(false)
		return d.aborted(sess, ReasonStaleActive)
	}

	if ev.OverRowID == "" {
		d.finish(false)
		return d.aborted(sess, ReasonNoTarget)
	}
	row, ok := d.store.Row(ev.OverRowID)
	if !ok {
		d.finish(false)
		return d.aborted(sess, ReasonUnknownRow)
	}
	if row.Disabled {
		d.finish(false)
		return d.aborted(sess, ReasonDisabledRow)
	}
	candidate, ok := ev.CandidateSpan.resolve()
	if !ok {
		d.finish(false)
		return d.aborted(sess, ReasonNoSpan)
	}

	var moved []string
	_, err := d.store.Map(func(it model.Item) model.Item {
		if it.Disabled {
			return it
		}
		if sess.group {
			off, ok := sess.offsets[it.ID]
			if !ok {
				return it
			}
			it.RowID = row.ID
			it.Span = model.Span{Start: candidate.Start + off.relStart, End: candidate.Start + off.relEnd}
			moved = append(moved, it.ID)
			return it
		}
		if it.ID != sess.activeID {
			return it
		}
		it.RowID = row.ID
		it.Span = candidate
		moved = append(moved, it.ID)
		return it
	})
	if err != nil {
		d.log.Warn("drag commit rejected", "session", sess.id, "err", err)
		d.finish(false)
		return d.aborted(sess, ReasonRejected)
	}
	d.finish(true)
	d.log.Debug("drag committed", "session", sess.id, "item", sess.activeID, "row", row.ID, "moved", len(moved))
	return Outcome{
		Kind:      Committed,
		SessionID: sess.id,
		ActiveID:  sess.activeID,
		Group:     sess.group,
		RowID:     row.ID,
		ItemIDs:   moved,
	}
}

// Cancel ends the current drag without committing, e.g. when the gesture
// collaborator aborts (escape key, pointer capture lost).
func (d *Drag) Cancel() Outcome {
	sess := d.session
	if sess == nil {
		if d.state == StateResizing {
			d.state = StateIdle
			d.resizeID = ""
			return Outcome{Kind: Cancelled}
		}
		return ignored(ReasonNoSession)
	}
	d.finish(false)
	d.log.Debug("drag cancelled", "session", sess.id, "item", sess.activeID)
	return Outcome{Kind: Cancelled, SessionID: sess.id, ActiveID: sess.activeID, Group: sess.group}
}

func (d *Drag) aborted(sess *dragSession, reason string) Outcome {
	d.log.Debug("drag aborted", "session", sess.id, "item", sess.activeID, "reason", reason)
	return Outcome{Kind: Aborted, Reason: reason, SessionID: sess.id, ActiveID: sess.activeID, Group: sess.group}
}

// finish is the single exit of a drag session: it drops the offsets and
// tells views the drag is over so live overrides do not outlive it.
func (d *Drag) finish(committed bool) {
	sess := d.session
	d.session = nil
	d.state = StateIdle
	if sess == nil {
		return
	}
	d.bus.DragEnd.Publish(broadcast.DragEnded{
		SessionID: sess.id,
		ItemID:    sess.activeID,
		Committed: committed,
	})
}

func (d *Drag) OnResizeStart(ev ResizeStartEvent) Outcome {
	if d.gate != nil {
		d.gate.raise()
	}
	it, ok := d.store.Item(ev.ActiveID)
	if !ok {
		return ignored(ReasonUnknownItem)
	}
	if it.Disabled {
		return ignored(ReasonDisabledItem)
	}
	d.state = StateResizing
	d.resizeID = it.ID
	return Outcome{Kind: Started, ActiveID: it.ID}
}

// OnResizeEnd sets the span of the resized item only. Row, selection and
// any drag offsets are left alone.
func (d *Drag) OnResizeEnd(ev ResizeEndEvent) Outcome {
	if d.state == StateResizing {
		d.state = StateIdle
		d.resizeID = ""
	}
	candidate, ok := ev.CandidateSpan.resolve()
	if !ok {
		return ignored(ReasonNoSpan)
	}
	it, ok := d.store.Item(ev.ActiveID)
	if !ok {
		return ignored(ReasonUnknownItem)
	}
	if it.Disabled {
		return ignored(ReasonDisabledItem)
	}
	changed, err := d.store.Map(func(cur model.Item) model.Item {
		if cur.ID == it.ID {
			cur.Span = candidate
		}
		return cur
	})
	if err != nil {
		d.log.Warn("resize commit rejected", "item", it.ID, "err", err)
		return ignored(ReasonRejected)
	}
	if !changed {
		return ignored(ReasonUnchanged)
	}
	d.log.Debug("resize committed", "item", it.ID, "start", candidate.Start, "end", candidate.End)
	return Outcome{Kind: Committed, ActiveID: it.ID, ItemIDs: []string{it.ID}}
}
