package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurturefox/trackd/internal/events"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/services"
	"github.com/nurturefox/trackd/internal/settings"
	"github.com/nurturefox/trackd/internal/store/sqlite"
	"github.com/nurturefox/trackd/internal/syncer"
)

func newTestServer(t *testing.T) (*httptest.Server, *syncer.Memory) {
	t.Helper()

	dir := t.TempDir()
	st, err := sqlite.New(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bus := events.NewBus(16)
	t.Cleanup(bus.Close)

	slot := syncer.NewMemory()
	set := settings.NewStore(filepath.Join(dir, "settings.json"))
	ledger := services.NewLedger(st, bus, slot, 2*time.Second, zerolog.Nop())

	router := NewRouter(Deps{
		Store:      st,
		Ledger:     ledger,
		Summary:    services.NewSummary(st),
		Milestones: services.NewMilestones(st, set),
		Settings:   set,
		Slot:       slot,
		Log:        zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, slot
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestEventLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// create
	resp := doJSON(t, "POST", srv.URL+"/api/events", model.Event{
		Kind:       model.KindFeed,
		Feed:       &model.FeedDetail{Amount: 4, Unit: model.UnitOunces},
		OccurredAt: time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Event
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)

	// get
	resp = doJSON(t, "GET", srv.URL+"/api/events/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.Event
	decode(t, resp, &got)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.Feed)
	assert.Equal(t, 4.0, got.Feed.Amount)

	// update amount
	got.Feed.Amount = 5
	resp = doJSON(t, "PUT", srv.URL+"/api/events/"+created.ID, got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// kind change is rejected
	bad := got
	bad.Kind = model.KindDiaper
	bad.Feed = nil
	bad.Diaper = &model.DiaperDetail{Contents: model.ContentsPee}
	resp = doJSON(t, "PUT", srv.URL+"/api/events/"+created.ID, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// list
	resp = doJSON(t, "GET", srv.URL+"/api/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Events []*model.Event `json:"events"`
		Count  int            `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 1, listed.Count)

	// delete, then delete again (idempotent)
	for i := 0; i < 2; i++ {
		resp = doJSON(t, "DELETE", srv.URL+"/api/events/"+created.ID, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}

	resp = doJSON(t, "GET", srv.URL+"/api/events/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLatestFeedEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, "GET", srv.URL+"/api/events/latest-feed", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	t1 := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(3 * time.Hour)
	for _, at := range []time.Time{t2, t1} { // insertion order differs from time order
		resp = doJSON(t, "POST", srv.URL+"/api/events", model.Event{
			Kind:       model.KindFeed,
			Feed:       &model.FeedDetail{Amount: 3, Unit: model.UnitOunces},
			OccurredAt: at,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp = doJSON(t, "GET", srv.URL+"/api/events/latest-feed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var latest model.Event
	decode(t, resp, &latest)
	assert.True(t, latest.OccurredAt.Equal(t2))
}

func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	now := time.Now().UTC()
	for _, e := range []model.Event{
		{Kind: model.KindFeed, Feed: &model.FeedDetail{Amount: 60, Unit: model.UnitMilliliters}, OccurredAt: now.Add(-time.Hour)},
		{Kind: model.KindDiaper, Diaper: &model.DiaperDetail{Contents: model.ContentsPoop}, OccurredAt: now.Add(-2 * time.Hour)},
	} {
		resp := doJSON(t, "POST", srv.URL+"/api/events", e)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, "GET", srv.URL+"/api/summary?window=24h", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var totals services.Totals
	decode(t, resp, &totals)
	assert.Equal(t, 1, totals.FeedCount)
	assert.InDelta(t, 2.0, totals.TotalOunces, 1e-9) // 60 ml at 30 ml/oz
	assert.Equal(t, 1, totals.DiaperCount)
	assert.Equal(t, 32.0, totals.GoalOunces)

	resp = doJSON(t, "GET", srv.URL+"/api/summary?window=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestMilestoneEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, "PUT", srv.URL+"/api/settings", map[string]interface{}{
		"babyName":    "Willow",
		"birthDate":   "2026-01-10T00:00:00Z",
		"dailyGoalOz": 32,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", srv.URL+"/api/milestones", map[string]interface{}{
		"name":       "first smile",
		"occurredAt": "2026-02-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec model.Milestone
	decode(t, resp, &rec)
	assert.Equal(t, "1m 5d", rec.AgeAtOccurrence)

	resp = doJSON(t, "GET", srv.URL+"/api/milestones", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Milestones []*model.Milestone `json:"milestones"`
		Count      int                `json:"count"`
	}
	decode(t, resp, &listed)
	require.Equal(t, 1, listed.Count)

	resp = doJSON(t, "DELETE", srv.URL+"/api/milestones/"+rec.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestSyncSlotLastWriteWins(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, "GET", srv.URL+"/api/sync/last-feed", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	t0 := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	for _, ts := range []time.Time{t0, t1} {
		resp = doJSON(t, "PUT", srv.URL+"/api/sync/last-feed", model.LastFeedState{Timestamp: ts, SyncTime: ts})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}

	resp = doJSON(t, "GET", srv.URL+"/api/sync/last-feed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state model.LastFeedState
	decode(t, resp, &state)
	assert.True(t, state.Timestamp.Equal(t1))

	resp = doJSON(t, "PUT", srv.URL+"/api/sync/last-feed", model.LastFeedState{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestBackupExportImport(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/events", model.Event{
		Kind:       model.KindFeed,
		Feed:       &model.FeedDetail{Amount: 4, Unit: model.UnitOunces},
		OccurredAt: time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/backup/export")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var exported bytes.Buffer
	_, err = exported.ReadFrom(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(exported.String(), "occurred_at,kind,detail,quantity\n"))

	// import without confirm is refused
	resp, err = http.Post(srv.URL+"/api/backup/import", "text/csv", bytes.NewReader(exported.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/api/backup/import?confirm=true", "text/csv", bytes.NewReader(exported.Bytes()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Imported int `json:"imported"`
	}
	decode(t, resp, &result)
	assert.Equal(t, 1, result.Imported)

	// malformed import aborts with 400 and leaves the ledger alone
	resp, err = http.Post(srv.URL+"/api/backup/import?confirm=true", "text/csv",
		strings.NewReader("occurred_at,kind,detail,quantity\nbad,FEED,oz,4\n"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "GET", srv.URL+"/api/events", nil)
	var listed struct {
		Count int `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 1, listed.Count)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestSettingsEndpointDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/settings")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg settings.Settings
	decode(t, resp, &cfg)
	assert.Equal(t, 32.0, cfg.DailyGoal)
	assert.Equal(t, "2", cfg.QuickSmall)
	assert.Equal(t, "6", cfg.QuickLarge)
}

func TestLoggedFeedReachesSlot(t *testing.T) {
	srv, slot := newTestServer(t)

	at := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	resp := doJSON(t, "POST", srv.URL+"/api/events", model.Event{
		Kind:       model.KindFeed,
		Feed:       &model.FeedDetail{Amount: 4, Unit: model.UnitOunces},
		OccurredAt: at,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		state, err := slot.FetchLatest(context.Background())
		if err == nil && state.Timestamp.Equal(at) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot never saw the logged feed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
