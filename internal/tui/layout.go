package tui

import (
	"strings"

	"timeline-cli/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	headerLines = 2
	footerLines = 2
	minSidebarW = 8
	maxSidebarW = 22
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines, so overlays never leave stale cells behind.
func normalizePane(s string, width, height int) string {
	width = max(width, 0)
	height = max(height, 0)

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + glyphEllipsis()
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// timeScale maps body columns onto unix milliseconds.
type timeScale struct {
	start     int64
	msPerCell int64
	cols      int
}

func newTimeScale(r model.Range, cols int) timeScale {
	cols = max(cols, 1)
	d := max(r.Duration()+1, 1)
	return timeScale{start: r.Start, msPerCell: max((d+int64(cols)-1)/int64(cols), 1), cols: cols}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (s timeScale) col(t int64) int { return int(floorDiv(t-s.start, s.msPerCell)) }

func (s timeScale) at(col int) int64 { return s.start + int64(col)*s.msPerCell }

// cells returns the clipped column range covered by sp. ok is false when sp
// is entirely outside the visible range.
func (s timeScale) cells(sp model.Span) (c0, c1 int, ok bool) {
	c0 = s.col(sp.Start)
	c1 = int(floorDiv(sp.End-s.start+s.msPerCell-1, s.msPerCell)) - 1
	if c1 < c0 {
		c1 = c0
	}
	if c1 < 0 || c0 >= s.cols {
		return 0, 0, false
	}
	return max(c0, 0), min(c1, s.cols-1), true
}

// snapTo rounds t to the nearest multiple of unit. unit <= 0 disables it.
func snapTo(t, unit int64) int64 {
	if unit <= 0 {
		return t
	}
	return floorDiv(t+unit/2, unit) * unit
}

// rowFrame is one row's slot on screen.
type rowFrame struct {
	row    model.Row
	top    int
	height int
	lanes  int
	laneOf map[string]int
	// items are the ids drawn in this row, in store order.
	items []string
}

type frame struct {
	sidebarW int
	bodyX    int
	bodyY    int
	bodyW    int
	bodyH    int
	laneH    int
	scale    timeScale
	rows     []rowFrame
	// hiddenAbove and hiddenBelow count rows virtualised away.
	hiddenAbove int
	hiddenBelow int
}

func sidebarWidth(rows []model.Row, total int) int {
	w := minSidebarW
	for _, r := range rows {
		w = max(w, xansi.StringWidth(r.ID)+len(glyphRowDisabled())+1)
	}
	w = min(w, maxSidebarW)
	if total > 0 {
		w = min(w, total/3)
	}
	return max(w, 1)
}

// layoutFrame places rows from scroll downward until the body is full.
// Only rows that get a slot are returned; their items are the ones views
// must be mounted for.
func layoutFrame(width, height int, rng model.Range, rows []model.Row, items []model.Item, scroll, laneH int) frame {
	laneH = max(laneH, 1)
	f := frame{laneH: laneH}
	f.sidebarW = sidebarWidth(rows, width)
	f.bodyX = f.sidebarW
	f.bodyY = headerLines
	f.bodyW = max(width-f.sidebarW, 1)
	f.bodyH = max(height-headerLines-footerLines, 1)
	f.scale = newTimeScale(rng, f.bodyW)

	byRow := map[string][]model.Item{}
	for _, it := range items {
		byRow[it.RowID] = append(byRow[it.RowID], it)
	}

	scroll = min(max(scroll, 0), max(len(rows)-1, 0))
	f.hiddenAbove = scroll
	y := f.bodyY
	for i := scroll; i < len(rows); i++ {
		r := rows[i]
		laneOf, lanes := assignLanes(byRow[r.ID])
		h := max(lanes, 1) * laneH
		if y+h > f.bodyY+f.bodyH && len(f.rows) > 0 {
			f.hiddenBelow = len(rows) - i
			break
		}
		rf := rowFrame{row: r, top: y, height: h, lanes: max(lanes, 1), laneOf: laneOf}
		for _, it := range byRow[r.ID] {
			rf.items = append(rf.items, it.ID)
		}
		f.rows = append(f.rows, rf)
		y += h
	}
	return f
}

// rowAt returns the row whose slot covers screen line y.
func (f frame) rowAt(y int) (rowFrame, bool) {
	for _, rf := range f.rows {
		if y >= rf.top && y < rf.top+rf.height {
			return rf, true
		}
	}
	return rowFrame{}, false
}

func (f frame) inBody(x, y int) bool {
	return x >= f.bodyX && x < f.bodyX+f.bodyW && y >= f.bodyY && y < f.bodyY+f.bodyH
}

func (f frame) visibleRow(id string) bool {
	for _, rf := range f.rows {
		if rf.row.ID == id {
			return true
		}
	}
	return false
}
