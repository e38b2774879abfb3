// Package store holds the authoritative item and row collections of a
// timeline session.
//
// The store is owned by a single event loop and is not safe for concurrent
// use. Every mutation replaces the whole item collection: callers read a
// snapshot, derive a new collection, and hand it back. Readers between two
// updates therefore always observe a consistent collection.
package store

import (
	"errors"
	"fmt"
	"slices"

	"timeline-cli/internal/model"
)

var (
	ErrUnknownRow    = errors.New("unknown row")
	ErrDuplicateItem = errors.New("duplicate item id")
	ErrDuplicateRow  = errors.New("duplicate row id")
	ErrInvalidSpan   = errors.New("invalid span")
)

type Store struct {
	rows    []model.Row
	rowIdx  map[string]int
	items   []model.Item
	itemIdx map[string]int
	version uint64
}

// New validates rows and items and returns a store holding copies of them.
func New(rows []model.Row, items []model.Item) (*Store, error) {
	s := &Store{rowIdx: make(map[string]int, len(rows))}
	for i, r := range rows {
		if _, ok := s.rowIdx[r.ID]; ok {
			return nil, fmt.Errorf("row %q: %w", r.ID, ErrDuplicateRow)
		}
		s.rowIdx[r.ID] = i
	}
	s.rows = slices.Clone(rows)
	if err := s.validate(items); err != nil {
		return nil, err
	}
	s.setItems(slices.Clone(items))
	return s, nil
}

func (s *Store) validate(items []model.Item) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return fmt.Errorf("item %q: %w", it.ID, ErrDuplicateItem)
		}
		seen[it.ID] = true
		if _, ok := s.rowIdx[it.RowID]; !ok {
			return fmt.Errorf("item %q row %q: %w", it.ID, it.RowID, ErrUnknownRow)
		}
		if !it.Span.Valid() {
			return fmt.Errorf("item %q: %w", it.ID, ErrInvalidSpan)
		}
	}
	return nil
}

func (s *Store) setItems(items []model.Item) {
	idx := make(map[string]int, len(items))
	for i, it := range items {
		idx[it.ID] = i
	}
	s.items = items
	s.itemIdx = idx
}

// Items returns a snapshot of the item collection. Mutating the returned
// slice does not affect the store.
func (s *Store) Items() []model.Item { return slices.Clone(s.items) }

func (s *Store) Rows() []model.Row { return slices.Clone(s.rows) }

func (s *Store) Item(id string) (model.Item, bool) {
	i, ok := s.itemIdx[id]
	if !ok {
		return model.Item{}, false
	}
	return s.items[i], true
}

func (s *Store) Row(id string) (model.Row, bool) {
	i, ok := s.rowIdx[id]
	if !ok {
		return model.Row{}, false
	}
	return s.rows[i], true
}

// Version increases by one for every update that changed the collection.
func (s *Store) Version() uint64 { return s.version }

// Replace swaps the item collection for fn(snapshot). The result must keep
// the store's invariants (unique ids, known rows, valid spans); otherwise it
// is rejected and the store is left untouched. Replace reports whether the
// collection changed.
func (s *Store) Replace(fn func(prev []model.Item) []model.Item) (bool, error) {
	next := fn(s.Items())
	if err := s.validate(next); err != nil {
		return false, err
	}
	if slices.Equal(next, s.items) {
		return false, nil
	}
	s.setItems(next)
	s.version++
	return true, nil
}

// Map applies fn to every item and replaces the collection with the result.
func (s *Store) Map(fn func(model.Item) model.Item) (bool, error) {
	return s.Replace(func(prev []model.Item) []model.Item {
		next := make([]model.Item, len(prev))
		for i, it := range prev {
			next[i] = fn(it)
		}
		return next
	})
}

// SelectedIDs returns the current selection set in collection order.
func (s *Store) SelectedIDs() []string { return model.SelectedIDs(s.items) }
