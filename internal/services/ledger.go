// Package services holds the application logic between the HTTP/CLI
// surfaces and the store: ledger mutations with change notification and
// slot republish, summary math, and milestone snapshots.
package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nurturefox/trackd/internal/events"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
	"github.com/nurturefox/trackd/internal/syncer"
)

// Ledger coordinates event persistence with the in-process bus and the
// last-feed sync channel. All dependencies are constructor-injected.
type Ledger struct {
	store          store.Store
	bus            *events.Bus
	channel        syncer.Channel
	publishTimeout time.Duration
	log            zerolog.Logger
}

// NewLedger wires a ledger service. channel may be nil for installs with no
// companion device; it is replaced by a no-op.
func NewLedger(s store.Store, bus *events.Bus, channel syncer.Channel, publishTimeout time.Duration, log zerolog.Logger) *Ledger {
	if channel == nil {
		channel = syncer.Noop{}
	}
	if publishTimeout <= 0 {
		publishTimeout = 5 * time.Second
	}
	return &Ledger{
		store:          s,
		bus:            bus,
		channel:        channel,
		publishTimeout: publishTimeout,
		log:            log.With().Str("component", "ledger").Logger(),
	}
}

// LogFeed records a feeding. occurredAt zero means now.
func (l *Ledger) LogFeed(ctx context.Context, amount float64, unit model.VolumeUnit, occurredAt time.Time) (*model.Event, error) {
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	e := &model.Event{
		Kind:       model.KindFeed,
		Feed:       &model.FeedDetail{Amount: amount, Unit: unit},
		OccurredAt: occurredAt,
	}
	return l.create(ctx, e)
}

// LogDiaper records a diaper change. occurredAt zero means now.
func (l *Ledger) LogDiaper(ctx context.Context, contents model.DiaperContents, occurredAt time.Time) (*model.Event, error) {
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	e := &model.Event{
		Kind:       model.KindDiaper,
		Diaper:     &model.DiaperDetail{Contents: contents},
		OccurredAt: occurredAt,
	}
	return l.create(ctx, e)
}

func (l *Ledger) create(ctx context.Context, e *model.Event) (*model.Event, error) {
	created, err := l.store.Events().Create(ctx, e)
	if err != nil {
		return nil, errors.Wrap(err, "create event")
	}
	l.bus.Publish(events.Change{Kind: events.ChangeInserted, EventID: created.ID, Event: created})
	if created.Kind == model.KindFeed {
		l.republishLastFeed()
	}
	return created, nil
}

// Update replaces the full record. A backdated edit can change which event
// is the latest feed, so the slot is republished after any feed update.
func (l *Ledger) Update(ctx context.Context, e *model.Event) (*model.Event, error) {
	updated, err := l.store.Events().Update(ctx, e)
	if err != nil {
		return nil, err
	}
	l.bus.Publish(events.Change{Kind: events.ChangeUpdated, EventID: updated.ID, Event: updated})
	if updated.Kind == model.KindFeed {
		l.republishLastFeed()
	}
	return updated, nil
}

// Delete removes the record; deleting an absent ID is a no-op. The kind is
// looked up first so a feed deletion can refresh the slot.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	existing, err := l.store.Events().Get(ctx, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	if err := l.store.Events().Delete(ctx, id); err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	l.bus.Publish(events.Change{Kind: events.ChangeDeleted, EventID: id})
	if existing.Kind == model.KindFeed {
		l.republishLastFeed()
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, id string) (*model.Event, error) {
	return l.store.Events().Get(ctx, id)
}

func (l *Ledger) List(ctx context.Context, req model.ListEventsRequest) ([]*model.Event, error) {
	return l.store.Events().List(ctx, req)
}

// LatestFeed returns the most recent feeding by OccurredAt.
func (l *Ledger) LatestFeed(ctx context.Context) (*model.Event, error) {
	return l.store.Events().LatestByKind(ctx, model.KindFeed)
}

// Stream returns a snapshot of the ledger plus a channel of subsequent
// changes. The subscription ends when ctx is cancelled; the caller may
// simply call Stream again to resubscribe.
func (l *Ledger) Stream(ctx context.Context) ([]*model.Event, <-chan events.Change, error) {
	ch, cancel := l.bus.Subscribe()
	snapshot, err := l.store.Events().List(ctx, model.ListEventsRequest{})
	if err != nil {
		cancel()
		return nil, nil, err
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return snapshot, ch, nil
}

// NotifyReplaced publishes a wholesale-replace notice and refreshes the
// slot. Called by restore after a successful import.
func (l *Ledger) NotifyReplaced() {
	l.bus.Publish(events.Change{Kind: events.ChangeReplaced})
	l.republishLastFeed()
}

// republishLastFeed pushes the current latest feed timestamp through the
// sync channel. Fire and forget: the mutation that triggered it has
// already committed, and an unreachable channel only leaves the remote
// glance stale, so failures are logged at debug and dropped.
func (l *Ledger) republishLastFeed() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.publishTimeout)
		defer cancel()

		latest, err := l.store.Events().LatestByKind(ctx, model.KindFeed)
		if errors.Is(err, model.ErrNotFound) {
			return
		}
		if err != nil {
			l.log.Debug().Err(err).Msg("latest feed lookup for republish failed")
			return
		}
		state := model.LastFeedState{
			Timestamp: latest.OccurredAt,
			SyncTime:  time.Now().UTC(),
		}
		if err := l.channel.Publish(ctx, state); err != nil {
			l.log.Debug().Err(err).Msg("last feed publish failed")
		}
	}()
}
