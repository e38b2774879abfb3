package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"timeline-cli/internal/journal"
	"timeline-cli/internal/model"
	"timeline-cli/internal/seed"
	"timeline-cli/internal/timeline"
)

// seedless is the fallback session; every script here embeds its own.
func seedless() seed.Session { return seed.Session{} }

const groupScript = `
session:
  range:
    start: 2025-03-09T00:00:00Z
    end: 2025-03-09T23:59:59Z
  rows:
    - id: row1
    - id: row2
  items:
    - id: A
      row: row1
      start: 2025-03-09T08:00:00Z
      end: 2025-03-09T09:00:00Z
    - id: B
      row: row1
      start: 2025-03-09T08:30:00Z
      end: 2025-03-09T10:00:00Z
    - id: C
      row: row2
      start: 2025-03-09T12:00:00Z
      end: 2025-03-09T13:00:00Z
steps:
  - op: select_start
  - op: select_end
    hits: [A, B]
  - op: pointer_down
    draggable: true
  - op: drag_start
    id: A
  - op: select_start
  - op: drag_move
    id: A
    dx: 4
    shift: 2h
  - op: drag_end
    id: A
    over: row2
    shift: 2h
  - op: resize_start
    id: C
  - op: resize_end
    id: C
    grow: 30m
`

func at(hh, mm int) int64 {
	return time.Date(2025, 3, 9, hh, mm, 0, 0, time.UTC).UnixMilli()
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func TestRun_GroupDragScript(t *testing.T) {
	t.Parallel()

	sc, err := DecodeScript(strings.NewReader(groupScript))
	if err != nil {
		t.Fatalf("DecodeScript: %v", err)
	}
	res, err := Run(context.Background(), seedless(), sc, WithSessionIDs(seqIDs()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	kinds := make([]timeline.OutcomeKind, 0, len(res.Steps))
	for _, s := range res.Steps {
		kinds = append(kinds, s.Outcome.Kind)
	}
	want := []timeline.OutcomeKind{
		timeline.Started, timeline.SelectionApplied, timeline.Ignored, timeline.Started,
		timeline.Ignored, timeline.Moved, timeline.Committed, timeline.Started, timeline.Committed,
	}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("expected %v; got %v", want, kinds)
	}
	if r := res.Steps[4].Outcome.Reason; r != timeline.ReasonDragInProgress {
		t.Fatalf("expected selection refused during drag; got %q", r)
	}

	if len(res.Broadcasts) != 1 {
		t.Fatalf("expected one broadcast; got %d", len(res.Broadcasts))
	}
	b, ok := res.Broadcasts[0].Find("B")
	if !ok || b.Span != (model.Span{Start: at(10, 30), End: at(12, 0)}) {
		t.Fatalf("unexpected live B %+v ok=%v", b, ok)
	}

	items := map[string]model.Item{}
	for _, it := range res.Items {
		items[it.ID] = it
	}
	if a := items["A"]; a.RowID != "row2" || a.Span != (model.Span{Start: at(10, 0), End: at(11, 0)}) {
		t.Fatalf("unexpected A %+v", a)
	}
	if b := items["B"]; b.RowID != "row2" || b.Span != (model.Span{Start: at(10, 30), End: at(12, 0)}) {
		t.Fatalf("unexpected B %+v", b)
	}
	if c := items["C"]; c.RowID != "row2" || c.Span != (model.Span{Start: at(12, 0), End: at(13, 30)}) {
		t.Fatalf("unexpected C %+v", c)
	}

	var jk []string
	for _, e := range res.Journal {
		jk = append(jk, e.Kind)
	}
	if strings.Join(jk, ",") != "select,group-drag,resize" {
		t.Fatalf("unexpected journal %v", jk)
	}
}

func TestRun_DropOutsideLeavesItems(t *testing.T) {
	t.Parallel()

	sc, err := DecodeScript(strings.NewReader(groupScript))
	if err != nil {
		t.Fatalf("DecodeScript: %v", err)
	}
	sc.Steps = []Step{
		{Op: OpDragStart, ID: "A"},
		{Op: OpDragMove, ID: "A", DX: 1, Shift: Duration(time.Hour)},
		{Op: OpDragEnd, ID: "A", Shift: Duration(time.Hour)},
	}
	res, err := Run(context.Background(), seedless(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out := res.Steps[2].Outcome; out.Kind != timeline.Aborted || out.Reason != timeline.ReasonNoTarget {
		t.Fatalf("expected abort without target; got %+v", out)
	}
	for _, it := range res.Items {
		if it.ID == "A" && it.Span.Start != at(8, 0) {
			t.Fatalf("A must stay put; got %+v", it)
		}
	}
	if len(res.Journal) != 0 {
		t.Fatalf("expected empty journal; got %+v", res.Journal)
	}
}

func TestRun_SharedJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, err := journal.Open(ctx)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer j.Close()

	sc, _ := DecodeScript(strings.NewReader(groupScript))
	if _, err := Run(ctx, seedless(), sc, WithJournal(j)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n, _ := j.Count(ctx); n != 3 {
		t.Fatalf("expected 3 entries in shared journal; got %d", n)
	}
}

func TestDecodeScript_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: ErrEmptyScript},
		{name: "no steps", raw: "steps: []", want: ErrEmptyScript},
		{name: "unknown op", raw: "steps:\n  - op: teleport", want: ErrUnknownOp},
		{name: "missing id", raw: "steps:\n  - op: drag_start", want: ErrMissingID},
	}
	for _, tt := range tests {
		if _, err := DecodeScript(strings.NewReader(tt.raw)); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v; got %v", tt.name, tt.want, err)
		}
	}
	if _, err := DecodeScript(strings.NewReader("steps:\n  - op: drag_start\n    id: A\n    speed: 3")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
