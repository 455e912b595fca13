// Package postgres implements store.Store on PostgreSQL via the pgx stdlib
// driver. Intended for shared-household installs where several devices talk
// to one trackd service; single-device installs use the sqlite driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens a connection, ensures the schema, and returns the store.
func New(dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
            event_id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            detail TEXT NOT NULL,
            quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
            occurred_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS events_kind_occurred_at_idx ON events(kind, occurred_at DESC);`,
		`CREATE TABLE IF NOT EXISTS milestones (
            milestone_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            occurred_at TIMESTAMPTZ NOT NULL,
            age_at_occurrence TEXT NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Events() store.Events         { return &events{db: s.db} }
func (s *pgStore) Milestones() store.Milestones { return &milestones{db: s.db} }

func (s *pgStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) Close() error { return s.db.Close() }

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
		`INSERT INTO events (event_id, kind, detail, quantity, occurred_at) VALUES ($1,$2,$3,$4,$5)`,
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
	if existing.Kind != ev.Kind {
		return nil, fmt.Errorf("%w: event kind cannot change", model.ErrValidation)
	}
	res, err := e.db.ExecContext(ctx,
		`UPDATE events SET detail = $1, quantity = $2, occurred_at = $3 WHERE event_id = $4`,
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
	_, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = $1`, id)
	return err
}

func (e *events) Get(ctx context.Context, id string) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT event_id, kind, detail, quantity, occurred_at FROM events WHERE event_id = $1`, id)
	ev, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return ev, err
}

func (e *events) List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error) {
	q := `SELECT event_id, kind, detail, quantity, occurred_at FROM events`
	var conds []string
	var args []interface{}
	if req.Kind != nil {
		args = append(args, string(*req.Kind))
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if req.After != nil {
		args = append(args, req.After.UTC())
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if req.Before != nil {
		args = append(args, req.Before.UTC())
		conds = append(conds, fmt.Sprintf("occurred_at < $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += ` ORDER BY occurred_at DESC`
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
		`SELECT event_id, kind, detail, quantity, occurred_at FROM events WHERE kind = $1 ORDER BY occurred_at DESC LIMIT 1`,
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return err
	}
	for _, ev := range list {
		id := ev.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (event_id, kind, detail, quantity, occurred_at) VALUES ($1,$2,$3,$4,$5)`,
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
		`INSERT INTO milestones (milestone_id, name, occurred_at, age_at_occurrence) VALUES ($1,$2,$3,$4)`,
		out.ID, out.Name, out.OccurredAt.UTC(), out.AgeAtOccurrence)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	return &out, nil
}

func (m *milestones) List(ctx context.Context) ([]*model.Milestone, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT milestone_id, name, occurred_at, age_at_occurrence FROM milestones ORDER BY occurred_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Milestone
	for rows.Next() {
		var ms model.Milestone
		if err := rows.Scan(&ms.ID, &ms.Name, &ms.OccurredAt, &ms.AgeAtOccurrence); err != nil {
			return nil, err
		}
		out = append(out, &ms)
	}
	return out, rows.Err()
}

func (m *milestones) Delete(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM milestones WHERE milestone_id = $1`, id)
	return err
}

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
