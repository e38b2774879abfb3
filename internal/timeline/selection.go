package timeline

import (
	"log/slog"

	"timeline-cli/internal/model"
	"timeline-cli/internal/store"
)

// Selection turns rubber-band gestures into selected flags on the store.
//
// A non-additive gesture clears the selection when it starts; the hit set at
// the end only ever adds to the selection. An empty hit set changes nothing.
type Selection struct {
	store  *store.Store
	gate   *Gate
	log    *slog.Logger
	active bool
}

func NewSelection(st *store.Store, gate *Gate, logger *slog.Logger) *Selection {
	return &Selection{store: st, gate: gate, log: orDiscard(logger)}
}

// Active reports whether a selection gesture is in progress.
func (s *Selection) Active() bool { return s.active }

// Stop cancels the in-flight gesture; its eventual end is ignored.
func (s *Selection) Stop() {
	if s.active {
		s.log.Debug("selection gesture stopped")
	}
	s.active = false
}

func (s *Selection) OnSelectGestureStart(mods Modifiers) Outcome {
	if s.gate != nil && s.gate.Dragging() {
		s.Stop()
		s.log.Debug("selection gesture refused", "reason", ReasonDragInProgress)
		return ignored(ReasonDragInProgress)
	}
	s.active = true
	if mods.Additive() {
		return Outcome{Kind: Started}
	}

	cleared := s.store.SelectedIDs()
	if len(cleared) == 0 {
		return Outcome{Kind: Started}
	}
	if _, err := s.store.Map(func(it model.Item) model.Item {
		it.Selected = false
		return it
	}); err != nil {
		s.log.Warn("clear selection rejected", "err", err)
		return ignored(ReasonRejected)
	}
	s.log.Debug("selection cleared", "count", len(cleared))
	return Outcome{Kind: SelectionCleared, ItemIDs: cleared}
}

func (s *Selection) OnSelectGestureEnd(hitIDs []string) Outcome {
	if !s.active {
		return ignored(ReasonNoGesture)
	}
	s.active = false

	hits := make(map[string]bool, len(hitIDs))
	var ordered []string
	for _, id := range hitIDs {
		it, ok := s.store.Item(id)
		if !ok || it.Disabled || hits[id] {
			continue
		}
		hits[id] = true
		ordered = append(ordered, id)
	}
	if len(ordered) == 0 {
		return ignored(ReasonEmptyHit)
	}

	changed, err := s.store.Map(func(it model.Item) model.Item {
		if hits[it.ID] {
			it.Selected = true
		}
		return it
	})
	if err != nil {
		s.log.Warn("apply selection rejected", "err", err)
		return ignored(ReasonRejected)
	}
	if !changed {
		return ignored(ReasonUnchanged)
	}
	s.log.Debug("selection applied", "hits", len(ordered), "selected", len(s.store.SelectedIDs()))
	return Outcome{Kind: SelectionApplied, ItemIDs: ordered}
}

// Clear drops every selected flag outside of a gesture (escape key).
func (s *Selection) Clear() Outcome {
	if s.gate != nil && s.gate.Dragging() {
		return ignored(ReasonDragInProgress)
	}
	cleared := s.store.SelectedIDs()
	if len(cleared) == 0 {
		return ignored(ReasonUnchanged)
	}
	if _, err := s.store.Map(func(it model.Item) model.Item {
		it.Selected = false
		return it
	}); err != nil {
		return ignored(ReasonRejected)
	}
	return Outcome{Kind: SelectionCleared, ItemIDs: cleared}
}

// SelectAll selects every enabled item.
func (s *Selection) SelectAll() Outcome {
	if s.gate != nil && s.gate.Dragging() {
		return ignored(ReasonDragInProgress)
	}
	var added []string
	if _, err := s.store.Map(func(it model.Item) model.Item {
		if !it.Disabled && !it.Selected {
			it.Selected = true
			added = append(added, it.ID)
		}
		return it
	}); err != nil {
		return ignored(ReasonRejected)
	}
	if len(added) == 0 {
		return ignored(ReasonUnchanged)
	}
	return Outcome{Kind: SelectionApplied, ItemIDs: added}
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
