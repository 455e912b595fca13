package glance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/syncer"
)

// Freshness tracks whether the cached slot value reflects a recent fetch.
type Freshness string

const (
	// Stale means the cached value is from a prior cycle (or absent) and a
	// refresh is due or in flight.
	Stale Freshness = "STALE"
	// Fresh means the last fetch attempt completed this cycle.
	Fresh Freshness = "FRESH"
)

// Snapshot is what the display layer reads: the last known state, how
// trustworthy it is, and its ready-to-show rendering.
type Snapshot struct {
	State     *model.LastFeedState
	Freshness Freshness
	Display   string
}

// Refresher polls the sync channel on an interval and caches the latest
// slot value. Reads never block on the network; a fetch failure keeps the
// previous value and marks it stale.
type Refresher struct {
	ch       syncer.Channel
	interval time.Duration
	log      zerolog.Logger

	mu    sync.RWMutex
	state *model.LastFeedState
	fresh Freshness

	stop     context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewRefresher builds a stopped refresher. interval <= 0 defaults to a
// minute, matching the coarseness of the rendered string.
func NewRefresher(ch syncer.Channel, interval time.Duration, log zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{
		ch:       ch,
		interval: interval,
		log:      log.With().Str("component", "glance").Logger(),
		fresh:    Stale,
	}
}

// Start begins polling until Stop is called or ctx is cancelled. The first
// fetch happens immediately so the display is not blank for a whole tick.
func (r *Refresher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.stop = cancel
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		r.refresh(ctx)
		tick := time.NewTicker(r.interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				r.refresh(ctx)
			}
		}
	}()
}

// Stop cancels polling and waits for the loop to exit. Safe to call more
// than once.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		if r.stop != nil {
			r.stop()
			<-r.done
		}
	})
}

// Read returns the current snapshot without touching the network.
func (r *Refresher) Read(now time.Time) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		State:     r.state,
		Freshness: r.fresh,
		Display:   Render(r.state, now),
	}
}

// Invalidate marks the cache stale so the next tick's fetch is treated as
// required rather than opportunistic. Called when a local edit may have
// changed the slot.
func (r *Refresher) Invalidate() {
	r.mu.Lock()
	r.fresh = Stale
	r.mu.Unlock()
}

func (r *Refresher) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	state, err := r.ch.FetchLatest(fetchCtx)
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case err == nil:
		r.state = state
		r.fresh = Fresh
	case errors.Is(err, syncer.ErrNoState):
		// Empty slot is a definitive answer, not a failure.
		r.state = nil
		r.fresh = Fresh
	default:
		r.fresh = Stale
		r.log.Debug().Err(err).Msg("glance refresh failed, keeping cached state")
	}
}
