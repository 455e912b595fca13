package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
	"github.com/nurturefox/trackd/internal/units"
)

// Window names a summary time range.
type Window string

const (
	WindowToday Window = "today"
	Window24h   Window = "24h"
	Window7d    Window = "7d"
)

// Bounds returns the window's start time relative to now. Today starts at
// local midnight; the rolling windows count back from now.
func (w Window) Bounds(now time.Time) (time.Time, error) {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case Window24h:
		return now.Add(-24 * time.Hour), nil
	case Window7d:
		return now.Add(-7 * 24 * time.Hour), nil
	default:
		return time.Time{}, errors.Wrapf(model.ErrValidation, "unknown window %q", string(w))
	}
}

// Totals are the aggregates a summary screen shows for one window. Volumes
// are normalized to ounces; nothing here is cached, every call recomputes
// from the listed events.
type Totals struct {
	Window       Window                       `json:"window"`
	FeedCount    int                          `json:"feedCount"`
	TotalOunces  float64                      `json:"totalOunces"`
	DiaperCount  int                          `json:"diaperCount"`
	DiaperByKind map[model.DiaperContents]int `json:"diaperByKind"`
	GoalOunces   float64                      `json:"goalOunces"`
	GoalProgress float64                      `json:"goalProgress"`
}

// Summarize folds a slice of events into totals. goalOz <= 0 disables the
// progress ratio.
func Summarize(evs []*model.Event, w Window, goalOz float64) Totals {
	t := Totals{
		Window:       w,
		DiaperByKind: make(map[model.DiaperContents]int),
		GoalOunces:   goalOz,
	}
	for _, e := range evs {
		switch e.Kind {
		case model.KindFeed:
			if e.Feed == nil {
				continue
			}
			t.FeedCount++
			t.TotalOunces += units.ToOunces(*e.Feed)
		case model.KindDiaper:
			if e.Diaper == nil {
				continue
			}
			t.DiaperCount++
			t.DiaperByKind[e.Diaper.Contents]++
		}
	}
	if goalOz > 0 {
		t.GoalProgress = t.TotalOunces / goalOz
	}
	return t
}

// Summary computes window aggregates straight from the store.
type Summary struct {
	store store.Store
}

func NewSummary(s store.Store) *Summary {
	return &Summary{store: s}
}

// Window lists the events inside w and summarizes them against goalOz.
func (s *Summary) Window(ctx context.Context, w Window, goalOz float64, now time.Time) (Totals, error) {
	start, err := w.Bounds(now)
	if err != nil {
		return Totals{}, err
	}
	evs, err := s.store.Events().List(ctx, model.ListEventsRequest{After: &start})
	if err != nil {
		return Totals{}, errors.Wrap(err, "list events for summary")
	}
	return Summarize(evs, w, goalOz), nil
}
