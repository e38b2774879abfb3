// Package journal keeps an in-memory sqlite log of every store mutation the
// coordinators made during one process run.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timeline-cli/internal/timeline"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry kinds.
const (
	KindDrag      = "drag"
	KindGroupDrag = "group-drag"
	KindResize    = "resize"
	KindSelect    = "select"
	KindClear     = "clear-selection"
)

// Gesture names accepted by Observe.
const (
	GestureDrag      = "drag"
	GestureResize    = "resize"
	GestureSelection = "selection"
)

var ErrClosed = errors.New("journal closed")

type Entry struct {
	ID       string    `json:"id" yaml:"id"`
	Kind     string    `json:"kind" yaml:"kind"`
	ActiveID string    `json:"activeId,omitempty" yaml:"activeId,omitempty"`
	RowID    string    `json:"rowId,omitempty" yaml:"rowId,omitempty"`
	ItemIDs  []string  `json:"itemIds" yaml:"itemIds"`
	At       time.Time `json:"at" yaml:"at"`
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates a fresh private in-memory database. Nothing is written to
// disk; the data goes away with Close.
func Open(ctx context.Context) (*Journal, error) {
	dsn := fmt.Sprintf("file:timeline-journal-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A memory database lives as long as its last connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS commits (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			active_id TEXT NOT NULL,
			row_id TEXT NOT NULL,
			item_ids_json TEXT NOT NULL,
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commits_kind ON commits(kind);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Record stores e, filling in ID and At when they are empty, and returns
// the stored entry.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if j == nil || j.db == nil {
		return Entry{}, ErrClosed
	}
	if e.Kind == "" {
		return Entry{}, errors.New("journal entry without kind")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = j.now()
	}
	if e.ItemIDs == nil {
		e.ItemIDs = []string{}
	}
	ids, err := json.Marshal(e.ItemIDs)
	if err != nil {
		return Entry{}, err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO commits(id, kind, active_id, row_id, item_ids_json, at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.ActiveID, e.RowID, string(ids), e.At.UnixMilli(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record %s: %w", e.Kind, err)
	}
	e.At = time.UnixMilli(e.At.UnixMilli())
	return e, nil
}

// Observe records out when it changed the store and reports whether it did.
func (j *Journal) Observe(ctx context.Context, gesture string, out timeline.Outcome) (bool, error) {
	e, ok := entryFor(gesture, out)
	if !ok {
		return false, nil
	}
	if _, err := j.Record(ctx, e); err != nil {
		return false, err
	}
	return true, nil
}

func entryFor(gesture string, out timeline.Outcome) (Entry, bool) {
	switch out.Kind {
	case timeline.Committed:
		kind := KindDrag
		switch {
		case gesture == GestureResize:
			kind = KindResize
		case out.Group:
			kind = KindGroupDrag
		}
		return Entry{Kind: kind, ActiveID: out.ActiveID, RowID: out.RowID, ItemIDs: out.ItemIDs}, true
	case timeline.SelectionApplied:
		return Entry{Kind: KindSelect, ItemIDs: out.ItemIDs}, true
	case timeline.SelectionCleared:
		return Entry{Kind: KindClear, ItemIDs: out.ItemIDs}, true
	default:
		return Entry{}, false
	}
}

// Recent returns up to limit entries, newest first. limit <= 0 means all.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}
	q := `SELECT id, kind, active_id, row_id, item_ids_json, at_unixms FROM commits ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			ids  string
			atMs int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.ActiveID, &e.RowID, &ids, &atMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ids), &e.ItemIDs); err != nil {
			return nil, fmt.Errorf("decode item ids of %s: %w", e.ID, err)
		}
		e.At = time.UnixMilli(atMs)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Count(ctx context.Context) (int, error) {
	if j == nil || j.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commits`).Scan(&n)
	return n, err
}
