package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"timeline-cli/internal/model"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownRow    = errors.New("item references unknown row")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrInvalidSpan   = errors.New("span ends before it starts")
	ErrEmptyDocument = errors.New("seed document has no rows")
)

// Document is the on-disk YAML shape of a seed file:
//
//	range:
//	  start: 2025-03-09T00:00:00Z
//	  end: 2025-03-09T23:59:59Z
//	rows:
//	  - id: crew
//	  - id: spare
//	    disabled: true
//	items:
//	  - id: shift-a
//	    row: crew
//	    start: 2025-03-09T08:00:00Z
//	    end: 2025-03-09T12:00:00Z
type Document struct {
	Range *RangeDoc `json:"range,omitempty" yaml:"range,omitempty"`
	Rows  []RowDoc  `json:"rows" yaml:"rows"`
	Items []ItemDoc `json:"items" yaml:"items"`
}

type RangeDoc struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

type RowDoc struct {
	ID       string `json:"id" yaml:"id"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type ItemDoc struct {
	ID       string    `json:"id" yaml:"id"`
	Row      string    `json:"row" yaml:"row"`
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end" yaml:"end"`
	Selected bool      `json:"selected,omitempty" yaml:"selected,omitempty"`
	Disabled bool      `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// LoadFile reads and validates a YAML seed file.
func LoadFile(path string, now func() time.Time) (Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return Session{}, err
	}
	defer f.Close()
	s, err := Decode(f, now)
	if err != nil {
		return Session{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return s, nil
}

// Decode parses a seed document. When the document has no range, the local
// day of now() is used.
func Decode(r io.Reader, now func() time.Time) (Session, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Session{}, err
	}
	return doc.Session(now)
}

// Session validates the document and converts it into model values.
func (d Document) Session(now func() time.Time) (Session, error) {
	if len(d.Rows) == 0 {
		return Session{}, ErrEmptyDocument
	}
	var s Session
	if d.Range != nil {
		s.Range = model.Range{Start: d.Range.Start.UnixMilli(), End: d.Range.End.UnixMilli()}
		if s.Range.End < s.Range.Start {
			return Session{}, fmt.Errorf("range: %w", ErrInvalidSpan)
		}
	} else {
		if now == nil {
			now = time.Now
		}
		s.Range = model.DayRange(now())
	}

	rows := map[string]model.Row{}
	for _, rd := range d.Rows {
		id := strings.TrimSpace(rd.ID)
		if id == "" {
			return Session{}, errors.New("row with empty id")
		}
		if _, ok := rows[id]; ok {
			return Session{}, fmt.Errorf("row %q: %w", id, ErrDuplicateID)
		}
		row := model.Row{ID: id, Disabled: rd.Disabled}
		rows[id] = row
		s.Rows = append(s.Rows, row)
	}

	seen := map[string]bool{}
	for _, it := range d.Items {
		itemID := strings.TrimSpace(it.ID)
		if itemID == "" {
			return Session{}, errors.New("item with empty id")
		}
		if seen[itemID] {
			return Session{}, fmt.Errorf("item %q: %w", itemID, ErrDuplicateID)
		}
		seen[itemID] = true
		row, ok := rows[strings.TrimSpace(it.Row)]
		if !ok {
			return Session{}, fmt.Errorf("item %q row %q: %w", itemID, it.Row, ErrUnknownRow)
		}
		span := model.Span{Start: it.Start.UnixMilli(), End: it.End.UnixMilli()}
		if !span.Valid() {
			return Session{}, fmt.Errorf("item %q: %w", itemID, ErrInvalidSpan)
		}
		disabled := it.Disabled || row.Disabled
		s.Items = append(s.Items, model.Item{
			ID:       itemID,
			RowID:    row.ID,
			Span:     span,
			Selected: it.Selected && !disabled,
			Disabled: disabled,
		})
	}
	return s, nil
}

// DocumentFor converts a session back into its YAML shape.
func DocumentFor(s Session) Document {
	doc := Document{
		Range: &RangeDoc{
			Start: model.Time(s.Range.Start).UTC(),
			End:   model.Time(s.Range.End).UTC(),
		},
	}
	for _, r := range s.Rows {
		doc.Rows = append(doc.Rows, RowDoc{ID: r.ID, Disabled: r.Disabled})
	}
	for _, it := range s.Items {
		doc.Items = append(doc.Items, ItemDoc{
			ID:       it.ID,
			Row:      it.RowID,
			Start:    model.Time(it.Span.Start).UTC(),
			End:      model.Time(it.Span.End).UTC(),
			Selected: it.Selected,
			Disabled: it.Disabled,
		})
	}
	return doc
}
