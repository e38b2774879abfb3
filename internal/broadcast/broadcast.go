// Package broadcast is a fire-and-forget publish/subscribe channel for
// transient timeline updates.
//
// Publish is a synchronous fan-out on the caller's goroutine: every current
// subscriber has run by the time Publish returns. There is no buffering and
// no replay, so a subscriber that arrives late only sees later messages.
package broadcast

import "timeline-cli/internal/model"

// Topic names are fixed; they identify the message schema on the wire
// (journal, replay output) as much as the in-process topic.
const (
	TopicGroupDragPositions = "UPDATE_GROUP_DRAG_POSITIONS"
	TopicDragStart          = "ON_SEGMENT_DRAG_START"
	TopicDragEnd            = "ON_SEGMENT_DRAG_END"
)

// GroupDragPositions carries live positions for every selected item of a
// group drag except the one under the pointer.
type GroupDragPositions struct {
	SessionID string               `json:"sessionId"`
	ActiveID  string               `json:"activeId"`
	Positions []model.LivePosition `json:"positions"`
}

// Find returns the position for id, if the batch carries one.
func (g GroupDragPositions) Find(id string) (model.LivePosition, bool) {
	for _, p := range g.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return model.LivePosition{}, false
}

type DragStarted struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"dragItemId"`
	Group     bool   `json:"group"`
	// Members lists every item moving with the drag, the active one included.
	Members []string `json:"members"`
}

type DragEnded struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"dragItemId"`
	Committed bool   `json:"committed"`
}

// Bus groups the topics a timeline session publishes on.
type Bus struct {
	GroupDrag *Topic[GroupDragPositions]
	DragStart *Topic[DragStarted]
	DragEnd   *Topic[DragEnded]
}

func NewBus() *Bus {
	return &Bus{
		GroupDrag: NewTopic[GroupDragPositions](TopicGroupDragPositions),
		DragStart: NewTopic[DragStarted](TopicDragStart),
		DragEnd:   NewTopic[DragEnded](TopicDragEnd),
	}
}
