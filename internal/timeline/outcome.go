package timeline

import "timeline-cli/internal/model"

type OutcomeKind int

const (
	// Ignored: the handler did nothing (missing or stale input).
	Ignored OutcomeKind = iota
	Started
	Moved
	Committed
	// Aborted: a terminal transition that discarded the gesture without
	// touching the store.
	Aborted
	Cancelled
	SelectionCleared
	SelectionApplied
)

func (k OutcomeKind) String() string {
	switch k {
	case Started:
		return "started"
	case Moved:
		return "moved"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	case Cancelled:
		return "cancelled"
	case SelectionCleared:
		return "selection-cleared"
	case SelectionApplied:
		return "selection-applied"
	default:
		return "ignored"
	}
}

// Reasons attached to Ignored and Aborted outcomes.
const (
	ReasonNone           = ""
	ReasonNoSession      = "no drag in progress"
	ReasonStaleActive    = "event for a different item than the active drag"
	ReasonUnknownItem    = "item not found"
	ReasonDisabledItem   = "item is disabled"
	ReasonNoDelta        = "degenerate delta"
	ReasonNoSpan         = "no candidate span"
	ReasonNoTarget       = "no target row"
	ReasonUnknownRow     = "target row not found"
	ReasonDisabledRow    = "target row is disabled"
	ReasonRejected       = "store rejected update"
	ReasonDragInProgress = "drag in progress"
	ReasonNoGesture      = "no selection gesture in progress"
	ReasonEmptyHit       = "selection hit nothing"
	ReasonUnchanged      = "nothing changed"
)

// Outcome describes what a coordinator handler did. Handlers never fail;
// the outcome is how callers (journal, TUI status line, tests) observe them.
type Outcome struct {
	Kind      OutcomeKind          `json:"kind"`
	Reason    string               `json:"reason,omitempty"`
	SessionID string               `json:"sessionId,omitempty"`
	ActiveID  string               `json:"activeId,omitempty"`
	Group     bool                 `json:"group,omitempty"`
	RowID     string               `json:"rowId,omitempty"`
	ItemIDs   []string             `json:"itemIds,omitempty"`
	Positions []model.LivePosition `json:"positions,omitempty"`
}

func ignored(reason string) Outcome { return Outcome{Kind: Ignored, Reason: reason} }
