// Package seed produces the rows and items a timeline session starts with,
// either randomly generated or read from a YAML seed file.
package seed

import (
	"math/rand/v2"
	"time"

	"timeline-cli/internal/model"
)

const (
	DefaultMinDuration = 60 * time.Minute
	DefaultMaxDuration = 360 * time.Minute

	DefaultRowCount  = 4
	DefaultItemCount = 10

	idLen = 4
)

// Generator draws random rows, items and spans. Use a seeded source in tests
// to get reproducible sessions.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rnd: rand.New(src)}
}

// NewSeededGenerator is a convenience for deterministic generation.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type RowOptions struct {
	Disabled bool
}

// Rows returns count rows with short random ids. Disabled rows carry a
// visible " (disabled)" suffix in their id.
func (g *Generator) Rows(count int, opts RowOptions) []model.Row {
	taken := map[string]bool{}
	rows := make([]model.Row, 0, max(count, 0))
	for i := 0; i < count; i++ {
		id := g.newShortID(idLen, taken)
		if opts.Disabled {
			id += disabledSuffix
		}
		rows = append(rows, model.Row{ID: id, Disabled: opts.Disabled})
	}
	return rows
}

func (g *Generator) inRange(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Int64N(hi-lo)
}

// RandomSpan returns a span of random duration in [minDur, maxDur) that fits
// inside r. Zero durations fall back to the defaults. When r is shorter than
// the drawn duration the span starts at r.Start.
func (g *Generator) RandomSpan(r model.Range, minDur, maxDur time.Duration) model.Span {
	if minDur <= 0 {
		minDur = DefaultMinDuration
	}
	if maxDur <= 0 {
		maxDur = DefaultMaxDuration
	}
	if maxDur < minDur {
		minDur, maxDur = maxDur, minDur
	}
	dur := g.inRange(minDur.Milliseconds(), maxDur.Milliseconds())
	start := g.inRange(r.Start, r.End-dur)
	return model.Span{Start: start, End: start + dur}
}

type ItemOptions struct {
	Disabled    bool
	MinDuration time.Duration
	MaxDuration time.Duration
}

// Items returns count unselected items spread over random rows. An item is
// disabled when its row is disabled or opts.Disabled is set.
func (g *Generator) Items(count int, r model.Range, rows []model.Row, opts ItemOptions) []model.Item {
	if len(rows) == 0 {
		return nil
	}
	taken := map[string]bool{}
	items := make([]model.Item, 0, max(count, 0))
	for i := 0; i < count; i++ {
		row := rows[g.rnd.IntN(len(rows))]
		disabled := row.Disabled || opts.Disabled

		id := g.newShortID(idLen, taken)
		if disabled {
			id += disabledSuffix
		}
		items = append(items, model.Item{
			ID:       id,
			RowID:    row.ID,
			Span:     g.RandomSpan(r, opts.MinDuration, opts.MaxDuration),
			Disabled: disabled,
		})
	}
	return items
}

// Session is the initial state of a timeline: the visible range plus the
// rows and items to load into the store.
type Session struct {
	Range model.Range
	Rows  []model.Row
	Items []model.Item
}

type Options struct {
	Rows        int
	Items       int
	MinDuration time.Duration
	MaxDuration time.Duration
	Now         func() time.Time
	// Range overrides the local day of Now when non-empty.
	Range model.Range
}

// Generate builds a random session covering opts.Range, or the local day of
// opts.Now when no range is given.
func (g *Generator) Generate(opts Options) Session {
	if opts.Rows <= 0 {
		opts.Rows = DefaultRowCount
	}
	if opts.Items < 0 {
		opts.Items = 0
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	r := opts.Range
	if r.Duration() <= 0 {
		r = model.DayRange(now())
	}
	rows := g.Rows(opts.Rows, RowOptions{})
	items := g.Items(opts.Items, r, rows, ItemOptions{
		MinDuration: opts.MinDuration,
		MaxDuration: opts.MaxDuration,
	})
	return Session{Range: r, Rows: rows, Items: items}
}
