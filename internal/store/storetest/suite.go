// Package storetest holds a compliance suite run against every store.Store
// driver. Implementations provide a clean, isolated store from makeStore.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
)

// Run exercises the ledger contract against a store.Store implementation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	feedAt := func(at time.Time, oz float64) *model.Event {
		return &model.Event{
			Kind:       model.KindFeed,
			Feed:       &model.FeedDetail{Amount: oz, Unit: model.UnitOunces},
			OccurredAt: at,
		}
	}
	diaperAt := func(at time.Time, c model.DiaperContents) *model.Event {
		return &model.Event{
			Kind:       model.KindDiaper,
			Diaper:     &model.DiaperDetail{Contents: c},
			OccurredAt: at,
		}
	}

	// Create assigns IDs and persists.
	f1, err := s.Events().Create(ctx, feedAt(base, 4))
	if err != nil {
		t.Fatalf("Create feed: %v", err)
	}
	if f1.ID == "" {
		t.Fatalf("Create: empty event id")
	}
	d1, err := s.Events().Create(ctx, diaperAt(base.Add(time.Hour), model.ContentsPoop))
	if err != nil {
		t.Fatalf("Create diaper: %v", err)
	}

	// List is descending by OccurredAt regardless of insertion order.
	lst, err := s.Events().List(ctx, model.ListEventsRequest{})
	if err != nil || len(lst) != 2 {
		t.Fatalf("List: n=%d err=%v", len(lst), err)
	}
	if lst[0].ID != d1.ID || lst[1].ID != f1.ID {
		t.Fatalf("List order: got %s, %s", lst[0].ID, lst[1].ID)
	}

	// Backdated insert lands in timestamp position, not insertion position.
	f0, err := s.Events().Create(ctx, feedAt(base.Add(-2*time.Hour), 2))
	if err != nil {
		t.Fatalf("Create backdated: %v", err)
	}
	lst, err = s.Events().List(ctx, model.ListEventsRequest{})
	if err != nil || len(lst) != 3 || lst[2].ID != f0.ID {
		t.Fatalf("backdated events should sort last: %v err=%v", ids(lst), err)
	}

	// LatestByKind picks maximum OccurredAt independent of insertion order.
	latest, err := s.Events().LatestByKind(ctx, model.KindFeed)
	if err != nil {
		t.Fatalf("LatestByKind: %v", err)
	}
	if latest.ID != f1.ID {
		t.Fatalf("LatestByKind: got %s want %s", latest.ID, f1.ID)
	}

	// Kind filter.
	feedKind := model.KindFeed
	feeds, err := s.Events().List(ctx, model.ListEventsRequest{Kind: &feedKind})
	if err != nil || len(feeds) != 2 {
		t.Fatalf("List kind filter: n=%d err=%v", len(feeds), err)
	}

	// Window filters.
	before := base.Add(30 * time.Minute)
	after := base.Add(-time.Hour)
	windowed, err := s.Events().List(ctx, model.ListEventsRequest{Before: &before, After: &after})
	if err != nil || len(windowed) != 1 || windowed[0].ID != f1.ID {
		t.Fatalf("List window: %v err=%v", ids(windowed), err)
	}

	// Limit caps results.
	if lim, err := s.Events().List(ctx, model.ListEventsRequest{Limit: 2}); err != nil || len(lim) != 2 {
		t.Fatalf("List limit: n=%d err=%v", len(lim), err)
	}

	// Update replaces the full record; the edit can backdate.
	f1.Feed.Amount = 5.5
	f1.OccurredAt = base.Add(-3 * time.Hour)
	if _, err := s.Events().Update(ctx, f1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Events().Get(ctx, f1.ID)
	if err != nil || got.Feed == nil || got.Feed.Amount != 5.5 {
		t.Fatalf("Get after update: %+v err=%v", got, err)
	}
	if latest, err := s.Events().LatestByKind(ctx, model.KindFeed); err != nil || latest.ID != f0.ID {
		t.Fatalf("LatestByKind after backdating edit: got %v err=%v", latest, err)
	}

	// Kind change is rejected.
	badKind := *got
	badKind.Kind = model.KindDiaper
	badKind.Feed = nil
	badKind.Diaper = &model.DiaperDetail{Contents: model.ContentsPee}
	if _, err := s.Events().Update(ctx, &badKind); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Update kind change: expected ErrValidation, got %v", err)
	}

	// Update of a missing ID reports not found.
	missing := feedAt(base, 1)
	missing.ID = "no-such-event"
	if _, err := s.Events().Update(ctx, missing); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update missing: expected ErrNotFound, got %v", err)
	}

	// Delete is idempotent: the second call is a clean no-op and other
	// records are untouched.
	if err := s.Events().Delete(ctx, d1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Events().Delete(ctx, d1.ID); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if lst, err := s.Events().List(ctx, model.ListEventsRequest{}); err != nil || len(lst) != 2 {
		t.Fatalf("List after double delete: n=%d err=%v", len(lst), err)
	}

	// LatestByKind on an empty category reports not found.
	if _, err := s.Events().LatestByKind(ctx, model.KindDiaper); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("LatestByKind empty: expected ErrNotFound, got %v", err)
	}

	// ReplaceAll swaps the ledger wholesale.
	repl := []*model.Event{
		feedAt(base.Add(10*time.Hour), 3),
		diaperAt(base.Add(11*time.Hour), model.ContentsBoth),
	}
	if err := s.Events().ReplaceAll(ctx, repl); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if lst, err := s.Events().List(ctx, model.ListEventsRequest{}); err != nil || len(lst) != 2 {
		t.Fatalf("List after ReplaceAll: n=%d err=%v", len(lst), err)
	}

	// ReplaceAll with an invalid event leaves the ledger untouched.
	bad := []*model.Event{{Kind: "NAP", OccurredAt: base}}
	if err := s.Events().ReplaceAll(ctx, bad); err == nil {
		t.Fatalf("ReplaceAll invalid: expected error")
	}
	if lst, err := s.Events().List(ctx, model.ListEventsRequest{}); err != nil || len(lst) != 2 {
		t.Fatalf("ledger changed by failed ReplaceAll: n=%d err=%v", len(lst), err)
	}

	// Milestones: age snapshot is stored verbatim.
	ms, err := s.Milestones().Create(ctx, &model.Milestone{
		Name:            "First Smile",
		OccurredAt:      base,
		AgeAtOccurrence: "2m 4d",
	})
	if err != nil {
		t.Fatalf("Milestone Create: %v", err)
	}
	if list, err := s.Milestones().List(ctx); err != nil || len(list) != 1 || list[0].AgeAtOccurrence != "2m 4d" {
		t.Fatalf("Milestone List: %+v err=%v", list, err)
	}
	if _, err := s.Milestones().Create(ctx, &model.Milestone{OccurredAt: base}); err == nil {
		t.Fatalf("Milestone without name should fail")
	}
	if err := s.Milestones().Delete(ctx, ms.ID); err != nil {
		t.Fatalf("Milestone Delete: %v", err)
	}
	if err := s.Milestones().Delete(ctx, ms.ID); err != nil {
		t.Fatalf("Milestone Delete twice: %v", err)
	}

	if err := s.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func ids(events []*model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
