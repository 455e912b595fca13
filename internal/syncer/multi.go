package syncer

import (
	"context"
	"errors"

	"github.com/nurturefox/trackd/internal/model"
)

// Multi fans a publish out to several channels, so a device can feed its
// locally hosted slot and a remote peer in one call. FetchLatest returns
// the first channel's answer that has state.
type Multi struct {
	channels []Channel
}

func NewMulti(channels ...Channel) *Multi {
	return &Multi{channels: channels}
}

// Publish delivers to every channel. The first failure is returned after
// all channels have been attempted; the slot value itself makes partial
// delivery harmless, the next publish simply overwrites.
func (m *Multi) Publish(ctx context.Context, state model.LastFeedState) error {
	var first error
	for _, ch := range m.channels {
		if err := ch.Publish(ctx, state); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *Multi) FetchLatest(ctx context.Context) (*model.LastFeedState, error) {
	var firstErr error
	for _, ch := range m.channels {
		state, err := ch.FetchLatest(ctx)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, ErrNoState) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNoState
}
