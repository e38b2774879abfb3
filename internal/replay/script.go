// Package replay runs scripted gestures through the timeline coordinators
// without a terminal, for the `timeline replay` command and for tests.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"timeline-cli/internal/seed"

	"gopkg.in/yaml.v3"
)

// Ops a step may carry.
const (
	OpPointerDown = "pointer_down"
	OpPointerUp   = "pointer_up"
	OpSelectStart = "select_start"
	OpSelectEnd   = "select_end"
	OpDragStart   = "drag_start"
	OpDragMove    = "drag_move"
	OpDragEnd     = "drag_end"
	OpDragCancel  = "drag_cancel"
	OpResizeStart = "resize_start"
	OpResizeEnd   = "resize_end"
)

var (
	ErrUnknownOp   = errors.New("unknown op")
	ErrMissingID   = errors.New("step needs an id")
	ErrEmptyScript = errors.New("script has no steps")
)

// Script is the YAML shape of a replay file:
//
//	session:            # optional seed document
//	  rows: [{id: row1}, {id: row2}]
//	  items: [...]
//	steps:
//	  - op: drag_start
//	    id: A
//	  - op: drag_move
//	    id: A
//	    dx: 4
//	    shift: 2h
//	  - op: drag_end
//	    id: A
//	    over: row2
//	    shift: 2h
type Script struct {
	Session *seed.Document `yaml:"session,omitempty"`
	Steps   []Step         `yaml:"steps"`
}

type Step struct {
	Op string `yaml:"op"`
	ID string `yaml:"id,omitempty"`

	// select_start
	Additive bool `yaml:"additive,omitempty"`
	// select_end
	Hits []string `yaml:"hits,omitempty"`
	// pointer_down
	Draggable bool `yaml:"draggable,omitempty"`

	// drag_move
	DX int `yaml:"dx,omitempty"`
	DY int `yaml:"dy,omitempty"`

	// Candidate span of drag_move, drag_end and resize_end. Span wins over
	// Shift; Shift moves the item's span from when the gesture began; Grow
	// moves only its end. With none of them the step has no candidate.
	Span  *SpanDoc       `yaml:"span,omitempty"`
	Shift *time.Duration `yaml:"shift,omitempty"`
	Grow  *time.Duration `yaml:"grow,omitempty"`

	// drag_end
	Over string `yaml:"over,omitempty"`
}

type SpanDoc struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

func LoadScript(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return Script{}, err
	}
	defer f.Close()
	s, err := DecodeScript(f)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func DecodeScript(r io.Reader) (Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, ErrEmptyScript
		}
		return Script{}, err
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

func (s Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	for i, st := range s.Steps {
		switch st.Op {
		case OpPointerDown, OpPointerUp, OpSelectStart, OpSelectEnd, OpDragCancel:
		case OpDragStart, OpDragMove, OpDragEnd, OpResizeStart, OpResizeEnd:
			if st.ID == "" {
				return fmt.Errorf("step %d (%s): %w", i+1, st.Op, ErrMissingID)
			}
		default:
			return fmt.Errorf("step %d: %w %q", i+1, ErrUnknownOp, st.Op)
		}
	}
	return nil
}
