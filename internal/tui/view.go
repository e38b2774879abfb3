package tui

import (
	"fmt"
	"strings"
	"time"

	"timeline-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type cell struct {
	r  rune
	st styleKey
}

// canvas is the body grid before styling. Runs of equal style are rendered
// together so a line costs one escape sequence per run, not per cell.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' ', st: stEmpty}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st styleKey) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, st: st}
}

func (c *canvas) fill(x0, x1, y int, r rune, st styleKey) {
	for x := x0; x <= x1; x++ {
		c.set(x, y, r, st)
	}
}

// text writes s from x, clipped to [x, limit].
func (c *canvas) text(x, limit, y int, s string, st styleKey) {
	for _, r := range s {
		if x > limit {
			return
		}
		c.set(x, y, r, st)
		x++
	}
}

func (c *canvas) line(y int, styles map[styleKey]lipgloss.Style) string {
	var b strings.Builder
	row := c.cells[y]
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].st == row[i].st {
			run.WriteRune(row[j].r)
			j++
		}
		b.WriteString(styles[row[i].st].Render(run.String()))
		i = j
	}
	return b.String()
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.overlay != overlayNone {
		return m.overlayView() + "\n" + m.footerView()
	}

	f := m.frame()
	var b strings.Builder
	b.WriteString(normalizePane(m.titleView(f), m.width, 1))
	b.WriteString("\n")
	b.WriteString(normalizePane(strings.Repeat(" ", f.sidebarW)+m.axisView(f), m.width, 1))
	b.WriteString("\n")
	b.WriteString(m.bodyView(f))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) titleView(f frame) string {
	from, to := model.Time(m.rng.Start), model.Time(m.rng.End)
	parts := []string{
		styleTitle().Render("timeline"),
		fmt.Sprintf("%s – %s", from.Format("Mon 02 Jan 15:04"), to.Format("Mon 02 Jan 15:04")),
	}
	if n := len(m.engine.Store.SelectedIDs()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if f.hiddenAbove > 0 || f.hiddenBelow > 0 {
		parts = append(parts, styleMuted().Render(fmt.Sprintf("rows ↑%d ↓%d", f.hiddenAbove, f.hiddenBelow)))
	}
	return strings.Join(parts, "  ")
}

// tickStep picks the coarsest step that still leaves room for the labels.
func tickStep(msPerCell int64) time.Duration {
	for _, d := range []time.Duration{
		15 * time.Minute, 30 * time.Minute, time.Hour, 2 * time.Hour,
		3 * time.Hour, 6 * time.Hour, 12 * time.Hour, 24 * time.Hour,
	} {
		if d.Milliseconds()/max(msPerCell, 1) >= 8 {
			return d
		}
	}
	return 7 * 24 * time.Hour
}

func (m Model) axisView(f frame) string {
	c := newCanvas(f.bodyW, 1)
	step := tickStep(f.scale.msPerCell).Milliseconds()
	layout := "15:04"
	if step >= (24 * time.Hour).Milliseconds() {
		layout = "Mon 02"
	}
	// Align to local wall-clock boundaries.
	_, off := model.Time(m.rng.Start).Zone()
	offMs := int64(off) * 1000
	t := floorDiv(m.rng.Start+offMs, step)*step - offMs
	for ; t <= m.rng.End; t += step {
		x := f.scale.col(t)
		if x < 0 {
			continue
		}
		c.set(x, 0, glyphTick(), stBand)
		c.text(x+1, f.bodyW-1, 0, model.Time(t).Format(layout), stEmpty)
	}
	styles := cellStyles()
	styles[stBand] = styleMuted()
	styles[stEmpty] = styleMuted()
	return c.line(0, styles)
}

// drawn is an item as it appears on screen right now.
type drawn struct {
	id    string
	span  model.Span
	lane  int
	style styleKey
}

func (m Model) itemStyle(id string) styleKey {
	v := m.views[id]
	switch {
	case v == nil:
		return stItem
	case v.Disabled():
		return stItemDisabled
	case m.flash[id]:
		return stItemFlash
	case v.Dragging() || (m.g.kind != gestureNone && m.g.id == id):
		return stItemLive
	case v.Selected():
		return stItemSelected
	}
	return stItem
}

// rowItems lists what to draw in rf. The item under the pointer is drawn in
// the row it hovers, on the first lane.
func (m Model) rowItems(f frame, rf rowFrame) []drawn {
	active := ""
	if m.g.kind == gestureDrag {
		active = m.g.id
	}
	var out []drawn
	for _, id := range rf.items {
		v := m.views[id]
		if v == nil {
			continue
		}
		if id == active && m.g.overRow != "" && m.g.overRow != rf.row.ID && f.visibleRow(m.g.overRow) {
			continue
		}
		out = append(out, drawn{id: id, span: v.Span(), lane: rf.laneOf[id], style: m.itemStyle(id)})
	}
	if active != "" && m.g.overRow == rf.row.ID {
		if v := m.views[active]; v != nil && v.RowID() != rf.row.ID {
			out = append(out, drawn{id: active, span: v.Span(), style: stItemLive})
		}
	}
	return out
}

func (m Model) bodyView(f frame) string {
	c := newCanvas(f.bodyW, f.bodyH)
	labels := make([]string, f.bodyH)

	for i, rf := range f.rows {
		bg := stEmpty
		if (i+f.hiddenAbove)%2 == 1 {
			bg = stRowAlt
		}
		for y := rf.top; y < rf.top+rf.height; y++ {
			c.fill(0, f.bodyW-1, y-f.bodyY, ' ', bg)
		}
		if rf.row.Disabled {
			for y := rf.top; y < rf.top+rf.height; y++ {
				for x := 0; x < f.bodyW; x += 4 {
					c.set(x, y-f.bodyY, glyphDisabled(), stRowDisabled)
				}
			}
		}
		label := rf.row.ID
		if rf.row.Disabled {
			label = glyphRowDisabled() + label
		}
		if idx := rf.top - f.bodyY; idx >= 0 && idx < len(labels) {
			labels[idx] = styleRowLabel(rf.row.Disabled).Render(xansi.Truncate(label, f.sidebarW-1, glyphEllipsis()))
		}

		for _, d := range m.rowItems(f, rf) {
			c0, c1, ok := f.scale.cells(d.span)
			if !ok {
				continue
			}
			for ly := 0; ly < f.laneH; ly++ {
				y := rf.top + d.lane*f.laneH + ly - f.bodyY
				fillR := ' '
				if d.style == stItemDisabled {
					fillR = glyphDisabled()
				}
				c.fill(c0, c1, y, fillR, d.style)
				if d.style == stItemSelected {
					for x := c0 + 1; x < c1; x += 2 {
						c.set(x, y, glyphStripe(), d.style)
					}
				}
				if ly == 0 {
					c.text(c0, c1, y, truncateLabel(d.id, c1-c0+1), d.style)
				}
				if c1 > c0 && d.style != stItemDisabled {
					c.set(c1, y, glyphHandle(), stHandle)
				}
			}
		}
	}

	if m.g.kind == gestureBand {
		m.drawBand(c, f)
	}

	styles := cellStyles()
	lines := make([]string, f.bodyH)
	side := lipgloss.NewStyle().Width(f.sidebarW)
	for y := range lines {
		lines[y] = side.Render(labels[y]) + c.line(y, styles)
	}
	return normalizePane(strings.Join(lines, "\n"), m.width, f.bodyH)
}

// truncateLabel leaves the last cell free for the resize handle.
func truncateLabel(s string, cells int) string {
	if cells <= 1 {
		return ""
	}
	return xansi.Truncate(s, cells-1, glyphEllipsis())
}

func (m Model) drawBand(c *canvas, f frame) {
	x0, y0, x1, y1 := m.g.bandRect()
	x0, x1 = x0-f.bodyX, x1-f.bodyX
	y0, y1 = y0-f.bodyY, y1-f.bodyY
	for x := x0; x <= x1; x++ {
		c.set(x, y0, glyphBandH(), stBand)
		c.set(x, y1, glyphBandH(), stBand)
	}
	for y := y0; y <= y1; y++ {
		c.set(x0, y, glyphBandV(), stBand)
		c.set(x1, y, glyphBandV(), stBand)
	}
	for _, p := range [][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		c.set(p[0], p[1], glyphBandCorner(), stBand)
	}
}

func (m Model) footerView() string {
	status := m.status
	if status == "" {
		status = " "
	}
	out := styleStatus().Render(status) + "\n" + m.help.View(m.keys)
	return normalizePane(out, m.width, footerLines)
}
