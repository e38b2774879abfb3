package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timeline-cli/internal/broadcast"
	"timeline-cli/internal/journal"
	"timeline-cli/internal/model"
	"timeline-cli/internal/seed"
	"timeline-cli/internal/store"
	"timeline-cli/internal/timeline"
)

type StepResult struct {
	Step    int              `json:"step" yaml:"step"`
	Op      string           `json:"op" yaml:"op"`
	ID      string           `json:"id,omitempty" yaml:"id,omitempty"`
	Outcome timeline.Outcome `json:"outcome" yaml:"outcome"`
}

type Result struct {
	Steps      []StepResult                   `json:"steps" yaml:"steps"`
	Broadcasts []broadcast.GroupDragPositions `json:"broadcasts" yaml:"broadcasts"`
	Items      []model.Item                   `json:"items" yaml:"items"`
	Journal    []journal.Entry                `json:"journal" yaml:"journal"`
}

type Option func(*runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// WithJournal records into j instead of a private journal. The caller keeps
// ownership of j.
func WithJournal(j *journal.Journal) Option {
	return func(r *runner) { r.journal = j }
}

// WithSessionIDs makes drag session ids predictable.
func WithSessionIDs(fn func() string) Option {
	return func(r *runner) { r.sessionIDs = fn }
}

type runner struct {
	logger     *slog.Logger
	journal    *journal.Journal
	sessionIDs func() string

	engine *timeline.Engine
	// origin is each item's span when its current gesture began.
	origin map[string]model.Span
}

// Run loads sess into a fresh store and plays every step of sc against it.
// A script-embedded session replaces sess.
func Run(ctx context.Context, sess seed.Session, sc Script, opts ...Option) (Result, error) {
	if err := sc.Validate(); err != nil {
		return Result{}, err
	}
	if sc.Session != nil {
		s, err := sc.Session.Session(nil)
		if err != nil {
			return Result{}, fmt.Errorf("script session: %w", err)
		}
		sess = s
	}

	r := &runner{origin: map[string]model.Span{}}
	for _, o := range opts {
		o(r)
	}
	if r.journal == nil {
		j, err := journal.Open(ctx)
		if err != nil {
			return Result{}, err
		}
		defer j.Close()
		r.journal = j
	}

	st, err := store.New(sess.Rows, sess.Items)
	if err != nil {
		return Result{}, err
	}
	engineOpts := []timeline.EngineOption{timeline.WithLogger(r.logger)}
	if r.sessionIDs != nil {
		engineOpts = append(engineOpts, timeline.WithDragOptions(timeline.WithSessionIDs(r.sessionIDs)))
	}
	r.engine = timeline.NewEngine(st, engineOpts...)

	var res Result
	sub := r.engine.Bus.GroupDrag.Subscribe(func(b broadcast.GroupDragPositions) {
		res.Broadcasts = append(res.Broadcasts, b)
	})
	defer sub.Close()

	for i, step := range sc.Steps {
		gesture, out := r.apply(step)
		if gesture != "" {
			if _, err := r.journal.Observe(ctx, gesture, out); err != nil {
				return Result{}, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		res.Steps = append(res.Steps, StepResult{Step: i + 1, Op: step.Op, ID: step.ID, Outcome: out})
	}

	res.Items = st.Items()
	entries, err := r.journal.Recent(ctx, 0)
	if err != nil {
		return Result{}, err
	}
	// Oldest first reads better next to the step list.
	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	res.Journal = entries
	return res, nil
}

// apply runs one step and names the gesture its outcome belongs to.
func (r *runner) apply(step Step) (string, timeline.Outcome) {
	e := r.engine
	switch step.Op {
	case OpPointerDown:
		e.Gate.PointerDown(step.Draggable)
		return "", timeline.Outcome{}
	case OpPointerUp:
		e.Gate.PointerUp()
		return "", timeline.Outcome{}
	case OpSelectStart:
		return journal.GestureSelection, e.Selection.OnSelectGestureStart(timeline.Modifiers{Ctrl: step.Additive})
	case OpSelectEnd:
		return journal.GestureSelection, e.Selection.OnSelectGestureEnd(step.Hits)
	case OpDragStart:
		r.remember(step.ID)
		return journal.GestureDrag, e.Drag.OnDragStart(timeline.DragStartEvent{ActiveID: step.ID})
	case OpDragMove:
		return journal.GestureDrag, e.Drag.OnDragMove(timeline.DragMoveEvent{
			ActiveID:      step.ID,
			Delta:         &timeline.Delta{X: step.DX, Y: step.DY},
			CandidateSpan: r.candidate(step),
		})
	case OpDragEnd:
		out := e.Drag.OnDragEnd(timeline.DragEndEvent{
			ActiveID:      step.ID,
			OverRowID:     step.Over,
			CandidateSpan: r.candidate(step),
		})
		e.Gate.PointerUp()
		return journal.GestureDrag, out
	case OpDragCancel:
		out := e.Drag.Cancel()
		e.Gate.PointerUp()
		return journal.GestureDrag, out
	case OpResizeStart:
		r.remember(step.ID)
		return journal.GestureResize, e.Drag.OnResizeStart(timeline.ResizeStartEvent{ActiveID: step.ID})
	case OpResizeEnd:
		out := e.Drag.OnResizeEnd(timeline.ResizeEndEvent{
			ActiveID:      step.ID,
			CandidateSpan: r.candidate(step),
		})
		e.Gate.PointerUp()
		return journal.GestureResize, out
	}
	return "", timeline.Outcome{}
}

func (r *runner) remember(id string) {
	if it, ok := r.engine.Store.Item(id); ok {
		r.origin[id] = it.Span
	}
}

func (r *runner) candidate(step Step) timeline.SpanFunc {
	switch {
	case step.Span != nil:
		return timeline.FixedSpan(model.Span{
			Start: model.Millis(step.Span.Start),
			End:   model.Millis(step.Span.End),
		})
	case step.Shift != nil, step.Grow != nil:
		return func() (model.Span, bool) {
			base, ok := r.origin[step.ID]
			if !ok {
				return model.Span{}, false
			}
			if step.Shift != nil {
				base = base.Shift(step.Shift.Milliseconds())
			}
			if step.Grow != nil {
				base.End += step.Grow.Milliseconds()
			}
			return base, true
		}
	default:
		return nil
	}
}

// Duration is a helper for building scripts in code.
func Duration(d time.Duration) *time.Duration { return &d }
