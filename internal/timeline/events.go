package timeline

import "timeline-cli/internal/model"

// SpanFunc derives the candidate span of the active item from a gesture.
// ok=false means the gesture could not produce one.
type SpanFunc func() (span model.Span, ok bool)

// FixedSpan returns a SpanFunc that always yields s.
func FixedSpan(s model.Span) SpanFunc {
	return func() (model.Span, bool) { return s, true }
}

// resolve treats nil funcs, missing spans and inverted spans alike.
func (f SpanFunc) resolve() (model.Span, bool) {
	if f == nil {
		return model.Span{}, false
	}
	s, ok := f()
	if !ok || !s.Valid() {
		return model.Span{}, false
	}
	return s, true
}

// Delta is the pointer displacement since the drag started, in the gesture
// collaborator's units.
type Delta struct {
	X int `json:"dx" yaml:"dx"`
	Y int `json:"dy" yaml:"dy"`
}

func (d *Delta) degenerate() bool {
	return d == nil || (d.X == 0 && d.Y == 0)
}

type DragStartEvent struct {
	ActiveID string
}

type DragMoveEvent struct {
	ActiveID      string
	Delta         *Delta
	CandidateSpan SpanFunc
}

type DragEndEvent struct {
	ActiveID string
	// OverRowID is the row under the pointer at release; empty when the
	// pointer left every droppable row.
	OverRowID     string
	CandidateSpan SpanFunc
}

type ResizeStartEvent struct {
	ActiveID string
}

type ResizeEndEvent struct {
	ActiveID      string
	CandidateSpan SpanFunc
}

// Modifiers are the keys held when a selection gesture starts. Either one
// makes the gesture additive.
type Modifiers struct {
	Ctrl bool
	Meta bool
}

func (m Modifiers) Additive() bool { return m.Ctrl || m.Meta }
