package syncer

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nurturefox/trackd/internal/model"
)

var (
	publishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Subsystem: "syncer",
			Name:      "publishes_total",
			Help:      "Last-feed slot publish attempts by outcome.",
		},
		[]string{"result"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Subsystem: "syncer",
			Name:      "fetches_total",
			Help:      "Last-feed slot fetch attempts by outcome.",
		},
		[]string{"result"},
	)
)

// Instrumented wraps a Channel with publish/fetch counters.
type Instrumented struct {
	inner Channel
}

// Instrument wraps ch; a nil ch gets the Noop channel.
func Instrument(ch Channel) *Instrumented {
	if ch == nil {
		ch = Noop{}
	}
	return &Instrumented{inner: ch}
}

func (i *Instrumented) Publish(ctx context.Context, state model.LastFeedState) error {
	err := i.inner.Publish(ctx, state)
	if err != nil {
		publishesTotal.WithLabelValues("error").Inc()
		return err
	}
	publishesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (i *Instrumented) FetchLatest(ctx context.Context) (*model.LastFeedState, error) {
	state, err := i.inner.FetchLatest(ctx)
	switch {
	case err == nil:
		fetchesTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNoState):
		fetchesTotal.WithLabelValues("empty").Inc()
	default:
		fetchesTotal.WithLabelValues("error").Inc()
	}
	return state, err
}
