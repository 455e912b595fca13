package backup

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nurturefox/trackd/internal/keyring"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
	"github.com/nurturefox/trackd/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s store.Store) []*model.Event {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	input := []*model.Event{
		{Kind: model.KindFeed, Feed: &model.FeedDetail{Amount: 4, Unit: model.UnitOunces}, OccurredAt: base},
		{Kind: model.KindFeed, Feed: &model.FeedDetail{Amount: 90, Unit: model.UnitMilliliters}, OccurredAt: base.Add(2 * time.Hour)},
		{Kind: model.KindDiaper, Diaper: &model.DiaperDetail{Contents: model.ContentsBoth}, OccurredAt: base.Add(time.Hour)},
	}
	for _, e := range input {
		if _, err := s.Events().Create(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return input
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	seed(t, src)

	var buf bytes.Buffer
	if err := Export(ctx, src, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "occurred_at,kind,detail,quantity\n") {
		t.Fatalf("missing header: %q", buf.String())
	}

	dst := newTestStore(t)
	n, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Fatalf("imported %d events, want 3", n)
	}

	evs, err := dst.Events().List(ctx, model.ListEventsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("restored %d events, want 3", len(evs))
	}
	// Listing is descending OccurredAt; the ml feed is the most recent.
	if evs[0].Feed == nil || evs[0].Feed.Unit != model.UnitMilliliters || evs[0].Feed.Amount != 90 {
		t.Fatalf("unexpected latest event %+v", evs[0])
	}
	if evs[1].Diaper == nil || evs[1].Diaper.Contents != model.ContentsBoth {
		t.Fatalf("unexpected middle event %+v", evs[1])
	}
}

func TestImportReplacesExistingLedger(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	csv := "occurred_at,kind,detail,quantity\n" +
		"2026-04-01T10:00:00Z,FEED,oz,5\n"
	n, err := Import(ctx, s, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d, want 1", n)
	}
	evs, _ := s.Events().List(ctx, model.ListEventsRequest{})
	if len(evs) != 1 {
		t.Fatalf("ledger should hold exactly the imported set, got %d", len(evs))
	}
}

func TestImportFailureLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	bad := []string{
		"occurred_at,kind,detail,quantity\nnot-a-time,FEED,oz,4\n",
		"occurred_at,kind,detail,quantity\n2026-04-01T10:00:00Z,NAP,oz,4\n",
		"occurred_at,kind,detail,quantity\n2026-04-01T10:00:00Z,FEED,oz,notanumber\n",
		"occurred_at,kind,detail,quantity\n2026-04-01T10:00:00Z,FEED,oz,-2\n",
		"wrong,header,entirely\n",
		"",
	}
	for _, in := range bad {
		if _, err := Import(ctx, s, strings.NewReader(in)); err == nil {
			t.Fatalf("import of %q should fail", in)
		}
	}

	evs, err := s.Events().List(ctx, model.ListEventsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("failed imports must not delete anything, ledger has %d events", len(evs))
	}
}

func TestSealedRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	seed(t, src)

	key, err := keyring.Load(filepath.Join(t.TempDir(), "install.key"))
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	sealed, err := ExportSealed(ctx, src, key)
	if err != nil {
		t.Fatalf("export sealed: %v", err)
	}
	if bytes.Contains(sealed, []byte("FEED")) {
		t.Fatalf("sealed export leaks plaintext")
	}

	dst := newTestStore(t)
	n, err := ImportSealed(ctx, dst, key, sealed)
	if err != nil {
		t.Fatalf("import sealed: %v", err)
	}
	if n != 3 {
		t.Fatalf("imported %d, want 3", n)
	}
}

func TestSealedImportWrongKeyAborts(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	seed(t, src)

	dir := t.TempDir()
	k1, _ := keyring.Load(filepath.Join(dir, "a.key"))
	k2, _ := keyring.Load(filepath.Join(dir, "b.key"))

	sealed, err := ExportSealed(ctx, src, k1)
	if err != nil {
		t.Fatalf("export sealed: %v", err)
	}

	dst := newTestStore(t)
	seed(t, dst)
	if _, err := ImportSealed(ctx, dst, k2, sealed); err == nil {
		t.Fatalf("wrong key should abort import")
	}
	evs, _ := dst.Events().List(ctx, model.ListEventsRequest{})
	if len(evs) != 3 {
		t.Fatalf("aborted sealed import must not delete anything")
	}
}
