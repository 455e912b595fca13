// Package store defines the persistence interface for the caregiving
// ledger. Implementations live under internal/store/<driver>/
// (sqlite for the embedded per-device store, postgres for a shared
// household install).
package store

import (
	"context"

	"github.com/nurturefox/trackd/internal/model"
)

// Store exposes the persistence operations required by services. The store
// is exclusively owned by the local application process; concurrent writes
// to the same record resolve last-write-wins with no merge.
type Store interface {
	Events() Events
	Milestones() Milestones
	HealthCheck(ctx context.Context) error
	Close() error
}

// Events is durable CRUD over the event ledger.
type Events interface {
	// Create assigns an ID when absent and persists durably before
	// returning. Model invariants are validated; beyond that the caller is
	// trusted.
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	// Update replaces the full record matching the ID. Returns
	// model.ErrNotFound when absent and model.ErrValidation on a kind
	// change.
	Update(ctx context.Context, e *model.Event) (*model.Event, error)
	// Delete removes the record. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Event, error)
	// List returns events descending by OccurredAt.
	List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error)
	// LatestByKind returns the single most recent event of the kind by
	// OccurredAt, or model.ErrNotFound. Served by the (kind, occurred_at)
	// index; glance surfaces poll this on every refresh.
	LatestByKind(ctx context.Context, kind model.EventKind) (*model.Event, error)
	// ReplaceAll wholesale-replaces the ledger in one transaction. Used by
	// restore; all-or-nothing.
	ReplaceAll(ctx context.Context, events []*model.Event) error
}

// Milestones is durable CRUD over milestone records.
type Milestones interface {
	Create(ctx context.Context, m *model.Milestone) (*model.Milestone, error)
	List(ctx context.Context) ([]*model.Milestone, error)
	Delete(ctx context.Context, id string) error
}
