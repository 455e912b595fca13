package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
	"github.com/nurturefox/trackd/internal/store/storetest"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCompliance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ev, err := s.Events().Create(ctx, &model.Event{
		Kind:       model.KindFeed,
		Feed:       &model.FeedDetail{Amount: 4, Unit: model.UnitOunces},
		OccurredAt: time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.Events().Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Feed == nil || got.Feed.Amount != 4 || !got.OccurredAt.Equal(ev.OccurredAt) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Events().Create(ctx, &model.Event{Kind: model.KindFeed, OccurredAt: time.Now()})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
