// Package syncer propagates the "last feed" timestamp between devices.
//
// The channel is a single shared key-value slot with last-write-wins
// semantics and no delivery or ordering guarantees: publishes are
// best-effort and may be lost, fetches may observe stale values. The
// ledger on the logging device stays the durable source of truth; the
// channel only feeds glanceable caches.
package syncer

import (
	"context"
	"errors"

	"github.com/nurturefox/trackd/internal/model"
)

// SlotKey is the fixed logical address of the shared last-feed slot.
const SlotKey = "last_feed"

// ErrNoState is returned by FetchLatest when nothing has ever been
// published to the slot. Callers render the placeholder, never an error.
var ErrNoState = errors.New("syncer: no state published")

// Channel is the abstract slot. Publish is fire-and-forget and idempotent:
// republishing an identical value has no additional effect. Both operations
// honor ctx cancellation; callers bound them with short timeouts so a
// glance refresh can never wedge a rendering path.
type Channel interface {
	Publish(ctx context.Context, state model.LastFeedState) error
	FetchLatest(ctx context.Context) (*model.LastFeedState, error)
}

// Noop discards publishes and never has state. Used when no companion is
// configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, state model.LastFeedState) error { return nil }

func (Noop) FetchLatest(ctx context.Context) (*model.LastFeedState, error) {
	return nil, ErrNoState
}
