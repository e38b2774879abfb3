package model

import "time"

// Span is a closed time interval in unix milliseconds.
// Spans are values: a commit replaces an item's span wholesale.
type Span struct {
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`
}

func (s Span) Valid() bool { return s.Start <= s.End }

func (s Span) Duration() int64 { return s.End - s.Start }

// Shift translates the span by delta milliseconds, keeping its duration.
func (s Span) Shift(delta int64) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Overlaps reports whether s and o share any instant. Touching endpoints
// do not count, so back-to-back items can share a subrow.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Range is the visible window of the timeline.
type Range struct {
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`
}

func (r Range) Duration() int64 { return r.End - r.Start }

// Intersects reports whether any part of s falls inside the range.
func (r Range) Intersects(s Span) bool {
	return s.Start < r.End && s.End > r.Start
}

// DayRange returns [00:00, 23:59:59.999] of t's local day.
func DayRange(t time.Time) Range {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return Range{Start: start.UnixMilli(), End: end.UnixMilli()}
}

type Row struct {
	ID       string `json:"id" yaml:"id"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type Item struct {
	ID       string `json:"id" yaml:"id"`
	RowID    string `json:"rowId" yaml:"rowId"`
	Span     Span   `json:"span" yaml:"span"`
	Selected bool   `json:"selected" yaml:"selected"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// LivePosition is a transient, non-committed placement of an item during a
// group drag. It mirrors Item so views can render it without a store lookup.
type LivePosition struct {
	ID       string `json:"id" yaml:"id"`
	Span     Span   `json:"span" yaml:"span"`
	Selected bool   `json:"selected" yaml:"selected"`
	RowID    string `json:"rowId" yaml:"rowId"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// SelectedIDs returns the ids of selected items in collection order.
func SelectedIDs(items []Item) []string {
	var out []string
	for _, it := range items {
		if it.Selected {
			out = append(out, it.ID)
		}
	}
	return out
}

func Millis(t time.Time) int64 { return t.UnixMilli() }

func Time(ms int64) time.Time { return time.UnixMilli(ms) }
