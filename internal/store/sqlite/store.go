// Package sqlite implements store.Store on an embedded SQLite database.
// This is the default driver: one file per install, WAL mode, schema
// managed by internal/localstate with destructive version fallback.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurturefox/trackd/internal/localstate"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
)

// New opens (or creates) the ledger database at path and ensures the schema.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := localstate.EnsureSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store over an existing connection (tests, factory).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Events() store.Events         { return &events{db: s.db} }
func (s *sqliteStore) Milestones() store.Milestones { return &milestones{db: s.db} }

func (s *sqliteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	out := *ev
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO Events (EventId, Kind, Detail, Quantity, OccurredAt) VALUES (?,?,?,?,?)`,
		out.ID, string(out.Kind), out.Detail(), out.Quantity(), out.OccurredAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &out, nil
}

func (e *events) Update(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	existing, err := e.Get(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	// Kind is immutable after creation.
	if existing.Kind != ev.Kind {
		return nil, fmt.Errorf("%w: event kind cannot change", model.ErrValidation)
	}
	res, err := e.db.ExecContext(ctx,
		`UPDATE Events SET Detail = ?, Quantity = ?, OccurredAt = ? WHERE EventId = ?`,
		ev.Detail(), ev.Quantity(), ev.OccurredAt.UTC(), ev.ID)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	out := *ev
	return &out, nil
}

func (e *events) Delete(ctx context.Context, id string) error {
	// Idempotent: deleting an absent ID is a no-op.
	_, err := e.db.ExecContext(ctx, `DELETE FROM Events WHERE EventId = ?`, id)
	return err
}

func (e *events) Get(ctx context.Context, id string) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT EventId, Kind, Detail, Quantity, OccurredAt FROM Events WHERE EventId = ?`, id)
	ev, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return ev, err
}

func (e *events) List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error) {
	q := `SELECT EventId, Kind, Detail, Quantity, OccurredAt FROM Events`
	var conds []string
	var args []interface{}
	if req.Kind != nil {
		conds = append(conds, `Kind = ?`)
		args = append(args, string(*req.Kind))
	}
	if req.After != nil {
		conds = append(conds, `OccurredAt >= ?`)
		args = append(args, req.After.UTC())
	}
	if req.Before != nil {
		conds = append(conds, `OccurredAt < ?`)
		args = append(args, req.Before.UTC())
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += ` ORDER BY OccurredAt DESC`
	if req.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", req.Limit)
	}

	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Event
	for rows.Next() {
		ev, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (e *events) LatestByKind(ctx context.Context, kind model.EventKind) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT EventId, Kind, Detail, Quantity, OccurredAt FROM Events WHERE Kind = ? ORDER BY OccurredAt DESC LIMIT 1`,
		string(kind))
	ev, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return ev, err
}

func (e *events) ReplaceAll(ctx context.Context, list []*model.Event) error {
	for _, ev := range list {
		if err := ev.Validate(); err != nil {
			return err
		}
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM Events`); err != nil {
		return err
	}
	for _, ev := range list {
		id := ev.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Events (EventId, Kind, Detail, Quantity, OccurredAt) VALUES (?,?,?,?,?)`,
			id, string(ev.Kind), ev.Detail(), ev.Quantity(), ev.OccurredAt.UTC()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// --- Milestones ---

type milestones struct{ db *sql.DB }

func (m *milestones) Create(ctx context.Context, ms *model.Milestone) (*model.Milestone, error) {
	out := *ms
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Name == "" {
		return nil, fmt.Errorf("%w: milestone name is required", model.ErrValidation)
	}
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO Milestones (MilestoneId, Name, OccurredAt, AgeAtOccurrence) VALUES (?,?,?,?)`,
		out.ID, out.Name, out.OccurredAt.UTC(), out.AgeAtOccurrence)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	return &out, nil
}

func (m *milestones) List(ctx context.Context) ([]*model.Milestone, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT MilestoneId, Name, OccurredAt, AgeAtOccurrence FROM Milestones ORDER BY OccurredAt DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Milestone
	for rows.Next() {
		var ms model.Milestone
		var occurred time.Time
		if err := rows.Scan(&ms.ID, &ms.Name, &occurred, &ms.AgeAtOccurrence); err != nil {
			return nil, err
		}
		ms.OccurredAt = occurred
		out = append(out, &ms)
	}
	return out, rows.Err()
}

func (m *milestones) Delete(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM Milestones WHERE MilestoneId = ?`, id)
	return err
}

// scanEvent rebuilds the tagged payload from the flat Kind/Detail/Quantity
// columns.
func scanEvent(scan func(...interface{}) error) (*model.Event, error) {
	var (
		id, kind, detail string
		quantity         float64
		occurred         time.Time
	)
	if err := scan(&id, &kind, &detail, &quantity, &occurred); err != nil {
		return nil, err
	}
	ev := &model.Event{ID: id, Kind: model.EventKind(kind), OccurredAt: occurred}
	switch ev.Kind {
	case model.KindFeed:
		ev.Feed = &model.FeedDetail{Amount: quantity, Unit: model.VolumeUnit(detail)}
	case model.KindDiaper:
		ev.Diaper = &model.DiaperDetail{Contents: model.DiaperContents(detail)}
	default:
		return nil, fmt.Errorf("corrupt ledger row %s: unknown kind %q", id, kind)
	}
	return ev, nil
}
