package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nurturefox/trackd/internal/agecalc"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/settings"
	"github.com/nurturefox/trackd/internal/store"
)

// Milestones records developmental markers. The age string is computed
// once at insert from the birth date configured at that moment and stored
// verbatim; editing the birth date afterwards does not rewrite history.
type Milestones struct {
	store    store.Store
	settings *settings.Store
}

func NewMilestones(s store.Store, set *settings.Store) *Milestones {
	return &Milestones{store: s, settings: set}
}

// Create snapshots the age at occurrence and persists the milestone.
// occurredAt zero means now.
func (m *Milestones) Create(ctx context.Context, name string, occurredAt time.Time) (*model.Milestone, error) {
	if name == "" {
		return nil, errors.Wrap(model.ErrValidation, "milestone name required")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	cfg, err := m.settings.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load settings for age snapshot")
	}
	rec := &model.Milestone{
		Name:            name,
		OccurredAt:      occurredAt,
		AgeAtOccurrence: agecalc.Age(cfg.BirthDate, occurredAt),
	}
	return m.store.Milestones().Create(ctx, rec)
}

func (m *Milestones) List(ctx context.Context) ([]*model.Milestone, error) {
	return m.store.Milestones().List(ctx)
}

func (m *Milestones) Delete(ctx context.Context, id string) error {
	return m.store.Milestones().Delete(ctx, id)
}
