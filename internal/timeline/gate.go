package timeline

// Stopper cancels an in-flight selection gesture.
type Stopper interface {
	Stop()
}

// StopperFunc adapts a plain func to Stopper.
type StopperFunc func()

func (f StopperFunc) Stop() {
	if f != nil {
		f()
	}
}

// Stoppers stops every element in order.
type Stoppers []Stopper

func (s Stoppers) Stop() {
	for _, st := range s {
		if st != nil {
			st.Stop()
		}
	}
}

// Gate is the shared "a drag is in progress" flag. It is raised
// synchronously on pointer-down over a draggable element (item body or
// resize handle) and lowered on pointer-up, so a selection gesture that
// starts from the same pointer-down can be refused.
type Gate struct {
	dragging bool
	stopper  Stopper
}

func NewGate(stopper Stopper) *Gate {
	return &Gate{stopper: stopper}
}

// SetStopper replaces what gets stopped when the gate is raised.
func (g *Gate) SetStopper(s Stopper) { g.stopper = s }

// PointerDown raises the flag when the pointer went down on a draggable
// element, cancelling any selection gesture already under way.
func (g *Gate) PointerDown(overDraggable bool) {
	if !overDraggable {
		return
	}
	g.raise()
}

func (g *Gate) PointerUp() { g.dragging = false }

func (g *Gate) Dragging() bool { return g.dragging }

func (g *Gate) raise() {
	g.dragging = true
	if g.stopper != nil {
		g.stopper.Stop()
	}
}
