// Package timeline coordinates selection, drag and resize gestures over a
// timeline store.
//
// Handlers run to completion on the caller's event loop and never return
// errors: missing or malformed gesture data turns into an Ignored or
// Aborted outcome and leaves the store as it was.
package timeline

import (
	"log/slog"

	"timeline-cli/internal/broadcast"
	"timeline-cli/internal/store"
)

// Engine wires one store, bus and gate to the two coordinators.
type Engine struct {
	Store     *store.Store
	Bus       *broadcast.Bus
	Gate      *Gate
	Selection *Selection
	Drag      *Drag
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	logger   *slog.Logger
	stoppers []Stopper
	dragOpts []DragOption
}

func WithLogger(l *slog.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = l }
}

// WithSelectionStopper adds a collaborator to stop whenever a drag begins
// (e.g. the rubber-band renderer), on top of the selection coordinator.
func WithSelectionStopper(s Stopper) EngineOption {
	return func(c *engineConfig) { c.stoppers = append(c.stoppers, s) }
}

func WithDragOptions(opts ...DragOption) EngineOption {
	return func(c *engineConfig) { c.dragOpts = append(c.dragOpts, opts...) }
}

func NewEngine(st *store.Store, opts ...EngineOption) *Engine {
	var cfg engineConfig
	for _, o := range opts {
		o(&cfg)
	}
	bus := broadcast.NewBus()
	gate := NewGate(nil)
	sel := NewSelection(st, gate, cfg.logger)
	gate.SetStopper(append(Stoppers{sel}, cfg.stoppers...))
	return &Engine{
		Store:     st,
		Bus:       bus,
		Gate:      gate,
		Selection: sel,
		Drag:      NewDrag(st, bus, gate, cfg.logger, cfg.dragOpts...),
	}
}
