// Package itemview holds the render state of a single timeline item.
//
// A View starts from the store's span, switches to live positions while a
// group drag carries its id, and falls back to the store as soon as the
// store hands it a new span or the drag ends.
package itemview

import (
	"timeline-cli/internal/broadcast"
	"timeline-cli/internal/model"
)

type View struct {
	id       string
	rowID    string
	prop     model.Span
	cached   model.Span
	selected bool
	disabled bool

	live     *model.LivePosition
	pointer  *model.Span
	dragging bool
	session  string

	subs []*broadcast.Subscription
}

// Mount creates a view for item and subscribes it to bus. Views that miss
// earlier batches render the store span until the next batch or commit.
func Mount(bus *broadcast.Bus, item model.Item) *View {
	v := &View{}
	v.apply(item)
	v.cached = item.Span
	if bus != nil {
		v.subs = append(v.subs,
			bus.GroupDrag.Subscribe(v.onPositions),
			bus.DragStart.Subscribe(v.onDragStart),
			bus.DragEnd.Subscribe(v.onDragEnd),
		)
	}
	return v
}

// Unmount drops every subscription. Safe to call twice.
func (v *View) Unmount() {
	for _, s := range v.subs {
		s.Close()
	}
	v.subs = nil
}

func (v *View) ID() string { return v.id }

func (v *View) RowID() string { return v.rowID }

func (v *View) Selected() bool { return v.selected }

func (v *View) Disabled() bool { return v.disabled }

// Mounted reports whether the view still listens to the bus.
func (v *View) Mounted() bool { return len(v.subs) > 0 }

// SetProps feeds the latest store state. A changed span resets the cached
// span and drops any live override.
func (v *View) SetProps(item model.Item) {
	changed := item.Span != v.prop
	v.apply(item)
	if changed {
		v.cached = item.Span
		v.live = nil
		v.pointer = nil
	}
}

func (v *View) apply(item model.Item) {
	v.id = item.ID
	v.rowID = item.RowID
	v.prop = item.Span
	v.selected = item.Selected
	v.disabled = item.Disabled
}

// Span is what should be drawn right now.
func (v *View) Span() model.Span {
	if v.pointer != nil {
		return *v.pointer
	}
	if v.live != nil {
		return v.live.Span
	}
	return v.cached
}

// Live returns the broadcast override, if one is in effect.
func (v *View) Live() (model.LivePosition, bool) {
	if v.live == nil {
		return model.LivePosition{}, false
	}
	return *v.live, true
}

// Follow pins the span of the item under the pointer. The coordinator does
// not broadcast for the active item, so the gesture layer drives it here.
func (v *View) Follow(span model.Span) {
	v.pointer = &span
}

// Unfollow drops the pointer pin, e.g. after a click that never moved.
func (v *View) Unfollow() { v.pointer = nil }

// Dragging reports whether the item moves with the current drag.
func (v *View) Dragging() bool { return v.dragging }

// TransitionsSuppressed is true while the item is selected and moving with
// a drag, so it tracks the pointer without easing.
func (v *View) TransitionsSuppressed() bool {
	return v.selected && v.dragging
}

func (v *View) onPositions(b broadcast.GroupDragPositions) {
	p, ok := b.Find(v.id)
	if !ok {
		return
	}
	v.live = &p
	v.dragging = true
	v.session = b.SessionID
}

func (v *View) onDragStart(m broadcast.DragStarted) {
	for _, id := range m.Members {
		if id == v.id {
			v.dragging = true
			v.session = m.SessionID
			return
		}
	}
}

func (v *View) onDragEnd(m broadcast.DragEnded) {
	if v.session != "" && m.SessionID != v.session {
		return
	}
	v.dragging = false
	v.session = ""
	v.live = nil
	v.pointer = nil
}
