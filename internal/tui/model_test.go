package tui

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"timeline-cli/internal/config"
	"timeline-cli/internal/journal"
	"timeline-cli/internal/model"
	"timeline-cli/internal/seed"

	tea "github.com/charmbracelet/bubbletea"
)

const minute = int64(time.Minute / time.Millisecond)

// The test screen is 80x12 with an 8 column sidebar, so the body is 72
// columns of one minute each. r1 is drawn on line 2, r2 on line 3.
func testItems() []model.Item {
	return []model.Item{
		{ID: "A", RowID: "r1", Span: model.Span{Start: 10 * minute, End: 20 * minute}},
		{ID: "B", RowID: "r1", Span: model.Span{Start: 40 * minute, End: 50 * minute}, Selected: true},
		{ID: "C", RowID: "r2", Span: model.Span{Start: 10 * minute, End: 20 * minute}},
	}
}

func newTestModel(t *testing.T, items []model.Item) (Model, *journal.Journal) {
	t.Helper()
	j, err := journal.Open(context.Background())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	cfg := config.Default()
	cfg.View.Snap = config.Duration{}
	m, err := New(Options{
		Session: seed.Session{
			Range: model.Range{Start: 0, End: 72*minute - 1},
			Rows:  []model.Row{{ID: "r1"}, {ID: "r2"}},
			Items: items,
		},
		Config:  cfg,
		Journal: j,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(m.Close)
	return send(t, m, tea.WindowSizeMsg{Width: 80, Height: 12}), j
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model; got %T", next)
	}
	return mm
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func item(t *testing.T, m Model, id string) model.Item {
	t.Helper()
	it, ok := m.engine.Store.Item(id)
	if !ok {
		t.Fatalf("expected item %s in store", id)
	}
	return it
}

func journalKinds(t *testing.T, j *journal.Journal) []string {
	t.Helper()
	entries, err := j.Recent(context.Background(), 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestMouseDragMovesSingleItemToHoveredRow(t *testing.T) {
	t.Parallel()

	m, j := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, motion(25, 3))
	if got := m.views["A"].Span(); got.Start != 15*minute {
		t.Fatalf("expected view to follow the pointer to 15m; got %v", got)
	}
	next, cmd := m.Update(release(25, 3))
	m = next.(Model)

	a := item(t, m, "A")
	if a.RowID != "r2" || a.Span != (model.Span{Start: 15 * minute, End: 25 * minute}) {
		t.Fatalf("expected A in r2 at 15m-25m; got %+v", a)
	}
	if b := item(t, m, "B"); b.RowID != "r1" || b.Span.Start != 40*minute {
		t.Fatalf("expected B untouched; got %+v", b)
	}
	if cmd == nil || !m.flash["A"] {
		t.Fatalf("expected A to flash after the drop")
	}
	if m.engine.Gate.Dragging() {
		t.Fatalf("expected gate lowered after release")
	}
	if got := journalKinds(t, j); !slices.Equal(got, []string{journal.KindDrag}) {
		t.Fatalf("expected one drag entry; got %v", got)
	}
	if !strings.Contains(m.status, "moved A to r2") {
		t.Fatalf("expected status to describe the move; got %q", m.status)
	}
}

func TestMouseGroupDragMovesSelectionWithoutFlash(t *testing.T) {
	t.Parallel()

	items := testItems()
	items[0].Selected = true
	m, j := newTestModel(t, items)

	m = send(t, m, press(20, 2))
	m = send(t, m, motion(25, 3))
	if live, ok := m.views["B"].Live(); !ok || live.Span.Start != 45*minute {
		t.Fatalf("expected B to carry a live override at 45m; got %+v ok=%v", live, ok)
	}
	next, cmd := m.Update(release(25, 3))
	m = next.(Model)

	for id, start := range map[string]int64{"A": 15 * minute, "B": 45 * minute} {
		it := item(t, m, id)
		if it.RowID != "r2" || it.Span.Start != start || it.Span.Duration() != 10*minute {
			t.Fatalf("expected %s in r2 starting at %d; got %+v", id, start, it)
		}
	}
	if c := item(t, m, "C"); c.Span.Start != 10*minute {
		t.Fatalf("expected C untouched; got %+v", c)
	}
	if cmd != nil || len(m.flash) != 0 {
		t.Fatalf("expected no flash for items that moved with the selection; got %v", m.flash)
	}
	if _, ok := m.views["B"].Live(); ok {
		t.Fatalf("expected live override cleared after commit")
	}
	if got := journalKinds(t, j); !slices.Equal(got, []string{journal.KindGroupDrag}) {
		t.Fatalf("expected one group-drag entry; got %v", got)
	}
}

func TestMouseClickWithoutMotionCancels(t *testing.T) {
	t.Parallel()

	m, j := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, release(20, 2))

	if v := m.engine.Store.Version(); v != 0 {
		t.Fatalf("expected store untouched; got version %d", v)
	}
	if got := journalKinds(t, j); len(got) != 0 {
		t.Fatalf("expected empty journal; got %v", got)
	}
}

func TestMouseDragBackToPressCellLeavesStore(t *testing.T) {
	t.Parallel()

	m, j := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, motion(25, 2))
	m = send(t, m, motion(20, 2))
	if got := m.views["A"].Span(); got.Start != 10*minute {
		t.Fatalf("expected view back at 10m with the pointer; got %v", got)
	}
	m = send(t, m, release(20, 2))

	if a := item(t, m, "A"); a.RowID != "r1" || a.Span != (model.Span{Start: 10 * minute, End: 20 * minute}) {
		t.Fatalf("expected A to stay at 10m-20m in r1; got %+v", a)
	}
	if v := m.engine.Store.Version(); v != 0 {
		t.Fatalf("expected store untouched; got version %d", v)
	}
	if got := journalKinds(t, j); len(got) != 0 {
		t.Fatalf("expected empty journal; got %v", got)
	}
}

func TestMouseDragCommitsReleasePosition(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, motion(30, 2))
	m = send(t, m, motion(20, 2))
	m = send(t, m, release(23, 2))

	if a := item(t, m, "A"); a.Span != (model.Span{Start: 13 * minute, End: 23 * minute}) {
		t.Fatalf("expected A at the release position 13m-23m; got %+v", a.Span)
	}
}

func TestMousePressOnDisabledItemStartsNothing(t *testing.T) {
	t.Parallel()

	items := append(testItems(), model.Item{ID: "D", RowID: "r2", Span: model.Span{Start: 30 * minute, End: 35 * minute}, Disabled: true})
	m, j := newTestModel(t, items)

	m = send(t, m, press(40, 3))
	if m.g.kind != gestureNone || m.engine.Selection.Active() {
		t.Fatalf("expected no gesture on a disabled item; got kind %d", m.g.kind)
	}
	if !m.engine.Gate.Dragging() {
		t.Fatalf("expected the gate raised while the pointer is down on an item")
	}
	m = send(t, m, motion(60, 3))
	m = send(t, m, release(60, 3))

	if got := m.engine.Store.SelectedIDs(); !slices.Equal(got, []string{"B"}) {
		t.Fatalf("expected selection kept; got %v", got)
	}
	if d := item(t, m, "D"); d.Span.Start != 30*minute {
		t.Fatalf("expected D untouched; got %+v", d)
	}
	if m.engine.Gate.Dragging() {
		t.Fatalf("expected gate lowered after release")
	}
	if got := journalKinds(t, j); len(got) != 0 {
		t.Fatalf("expected empty journal; got %v", got)
	}
}

func TestMouseDropOutsideRowsAborts(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, motion(30, 8))
	m = send(t, m, release(30, 8))

	if v := m.engine.Store.Version(); v != 0 {
		t.Fatalf("expected store untouched; got version %d", v)
	}
	if got := m.views["A"].Span(); got.Start != 10*minute {
		t.Fatalf("expected A drawn at its committed span; got %v", got)
	}
	if !strings.Contains(m.status, "no target row") {
		t.Fatalf("expected abort reason in status; got %q", m.status)
	}
}

func TestMouseResizeFromHandle(t *testing.T) {
	t.Parallel()

	m, j := newTestModel(t, testItems())
	m = send(t, m, press(27, 2))
	if m.g.kind != gestureResize {
		t.Fatalf("expected the right edge to start a resize; got kind %d", m.g.kind)
	}
	m = send(t, m, motion(31, 3))
	m = send(t, m, release(31, 3))

	a := item(t, m, "A")
	if a.RowID != "r1" || a.Span != (model.Span{Start: 10 * minute, End: 24 * minute}) {
		t.Fatalf("expected A resized in place to 10m-24m; got %+v", a)
	}
	if got := journalKinds(t, j); !slices.Equal(got, []string{journal.KindResize}) {
		t.Fatalf("expected one resize entry; got %v", got)
	}
}

func TestMouseResizeNeverShrinksBelowOneCell(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	m = send(t, m, press(27, 2))
	m = send(t, m, motion(2, 2))
	m = send(t, m, release(2, 2))

	if a := item(t, m, "A"); a.Span != (model.Span{Start: 10 * minute, End: 11 * minute}) {
		t.Fatalf("expected A clamped to one minute; got %+v", a.Span)
	}
}

func TestMouseBandSelects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctrl bool
		want []string
	}{
		{name: "replaces selection", want: []string{"C"}},
		{name: "ctrl adds to selection", ctrl: true, want: []string{"B", "C"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newTestModel(t, testItems())
			down := press(70, 3)
			down.Ctrl = tc.ctrl
			m = send(t, m, down)
			if m.g.kind != gestureBand {
				t.Fatalf("expected a band gesture; got kind %d", m.g.kind)
			}
			m = send(t, m, motion(15, 3))
			m = send(t, m, release(15, 3))

			if got := m.engine.Store.SelectedIDs(); !slices.Equal(got, tc.want) {
				t.Fatalf("expected selection %v; got %v", tc.want, got)
			}
		})
	}
}

func TestDragStartDropsBand(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	m = send(t, m, press(70, 3))
	if !m.engine.Selection.Active() {
		t.Fatalf("expected a selection gesture in progress")
	}
	m.engine.Gate.PointerDown(true)
	if m.g.kind != gestureNone {
		t.Fatalf("expected band dropped when a drag begins; got kind %d", m.g.kind)
	}
	if m.engine.Selection.Active() {
		t.Fatalf("expected selection gesture stopped")
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, motion(25, 3))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if v := m.engine.Store.Version(); v != 0 {
		t.Fatalf("expected store untouched; got version %d", v)
	}
	if m.engine.Gate.Dragging() || m.g.kind != gestureNone {
		t.Fatalf("expected gesture and gate reset")
	}
	if got := m.views["A"].Span(); got.Start != 10*minute {
		t.Fatalf("expected A back at its committed span; got %v", got)
	}
	// The release arriving after escape is harmless.
	m = send(t, m, release(25, 3))
	if v := m.engine.Store.Version(); v != 0 {
		t.Fatalf("expected late release ignored; got version %d", v)
	}
}

func TestSelectAllAndClearKeys(t *testing.T) {
	t.Parallel()

	items := testItems()
	items = append(items, model.Item{ID: "D", RowID: "r2", Span: model.Span{Start: 30 * minute, End: 35 * minute}, Disabled: true})
	m, j := newTestModel(t, items)

	m = send(t, m, keyRunes("a"))
	if got := m.engine.Store.SelectedIDs(); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Fatalf("expected every enabled item selected; got %v", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.engine.Store.SelectedIDs(); len(got) != 0 {
		t.Fatalf("expected selection cleared; got %v", got)
	}
	if got := journalKinds(t, j); !slices.Equal(got, []string{journal.KindClear, journal.KindSelect}) {
		t.Fatalf("expected clear then select, newest first; got %v", got)
	}

	m = send(t, m, keyRunes("h"))
	if m.overlay != overlayHistory || len(m.history.Items()) != 2 {
		t.Fatalf("expected history overlay with 2 entries; got overlay %d with %d", m.overlay, len(m.history.Items()))
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.overlay != overlayNone {
		t.Fatalf("expected esc to close the overlay")
	}
}

func TestFlashExpires(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	m = send(t, m, press(20, 2))
	m = send(t, m, motion(22, 2))
	m = send(t, m, release(22, 2))
	if !m.flash["A"] {
		t.Fatalf("expected A flashing")
	}
	stale := send(t, m, flashDoneMsg{seq: m.flashSeq - 1})
	if !stale.flash["A"] {
		t.Fatalf("expected a stale tick to leave the flash alone")
	}
	m = send(t, m, flashDoneMsg{seq: m.flashSeq})
	if len(m.flash) != 0 {
		t.Fatalf("expected flash cleared; got %v", m.flash)
	}
}

func TestZoomAndPan(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	before := m.rng
	m = send(t, m, keyRunes("-"))
	if got := m.rng.Duration(); got != 2*before.Duration() {
		t.Fatalf("expected zoom out to double the range; got %d want %d", got, 2*before.Duration())
	}
	for range 20 {
		m = send(t, m, keyRunes("+"))
	}
	if got := m.rng.Duration(); got != minZoom.Milliseconds() {
		t.Fatalf("expected zoom clamped at %d; got %d", minZoom.Milliseconds(), got)
	}
	start := m.rng.Start
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.rng.Start <= start {
		t.Fatalf("expected pan right to move the range later")
	}
}

func TestViewFillsScreen(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, testItems())
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines; got %d", len(lines))
	}
	for _, want := range []string{"timeline", "r1", "r2", "1 selected"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}

func TestViewportVirtualisesRows(t *testing.T) {
	t.Parallel()

	var rows []model.Row
	var items []model.Item
	for i := range 20 {
		id := string(rune('a' + i))
		rows = append(rows, model.Row{ID: id})
		items = append(items, model.Item{ID: "it-" + id, RowID: id, Span: model.Span{Start: 0, End: 5 * minute}})
	}
	cfg := config.Default()
	m, err := New(Options{Session: seed.Session{Range: model.Range{Start: 0, End: 72*minute - 1}, Rows: rows, Items: items}, Config: cfg})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(m.Close)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})

	if len(m.views) != 8 {
		t.Fatalf("expected views only for the 8 visible rows; got %d", len(m.views))
	}
	hidden := m.views["it-a"]
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if _, ok := m.views["it-a"]; ok || hidden.Mounted() {
		t.Fatalf("expected the scrolled-away view unmounted")
	}
	if _, ok := m.views["it-i"]; !ok {
		t.Fatalf("expected the newly visible row mounted")
	}
}
