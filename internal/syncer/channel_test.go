package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nurturefox/trackd/internal/model"
)

func TestMemoryEmptySlot(t *testing.T) {
	ch := NewMemory()
	_, err := ch.FetchLatest(context.Background())
	if !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
}

func TestMemoryLastWriteWins(t *testing.T) {
	ctx := context.Background()
	ch := NewMemory()

	t0 := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	if err := ch.Publish(ctx, model.LastFeedState{Timestamp: t0, SyncTime: t0}); err != nil {
		t.Fatalf("publish t0: %v", err)
	}
	if err := ch.Publish(ctx, model.LastFeedState{Timestamp: t1, SyncTime: t1}); err != nil {
		t.Fatalf("publish t1: %v", err)
	}

	got, err := ch.FetchLatest(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !got.Timestamp.Equal(t1) {
		t.Fatalf("last write should win: got %v want %v", got.Timestamp, t1)
	}
}

func TestMemoryRepublishIdempotent(t *testing.T) {
	ctx := context.Background()
	ch := NewMemory()

	t0 := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	first := model.LastFeedState{Timestamp: t0, SyncTime: t0}
	if err := ch.Publish(ctx, first); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Same timestamp, later sync time: no additional effect.
	if err := ch.Publish(ctx, model.LastFeedState{Timestamp: t0, SyncTime: t0.Add(time.Minute)}); err != nil {
		t.Fatalf("republish: %v", err)
	}
	got, err := ch.FetchLatest(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !got.SyncTime.Equal(t0) {
		t.Fatalf("republish of identical value should be a no-op, got syncTime %v", got.SyncTime)
	}
}

func TestMemoryHonorsCancellation(t *testing.T) {
	ch := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ch.Publish(ctx, model.LastFeedState{Timestamp: time.Now()}); err == nil {
		t.Fatalf("publish on cancelled ctx should fail")
	}
	if _, err := ch.FetchLatest(ctx); err == nil {
		t.Fatalf("fetch on cancelled ctx should fail")
	}
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var ch Channel = Noop{}
	if err := ch.Publish(ctx, model.LastFeedState{Timestamp: time.Now()}); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
	if _, err := ch.FetchLatest(ctx); !errors.Is(err, ErrNoState) {
		t.Fatalf("noop fetch: expected ErrNoState, got %v", err)
	}
}

func TestInstrumentedPassThrough(t *testing.T) {
	ctx := context.Background()
	ch := Instrument(NewMemory())

	if _, err := ch.FetchLatest(ctx); !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState through instrumentation, got %v", err)
	}
	t0 := time.Now().UTC()
	if err := ch.Publish(ctx, model.LastFeedState{Timestamp: t0, SyncTime: t0}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, err := ch.FetchLatest(ctx)
	if err != nil || !got.Timestamp.Equal(t0) {
		t.Fatalf("fetch through instrumentation: %+v err=%v", got, err)
	}
}
