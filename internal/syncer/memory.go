package syncer

import (
	"context"
	"sync"

	"github.com/nurturefox/trackd/internal/model"
)

// Memory is an in-process slot. It backs single-device installs and tests,
// and also serves as the server-side slot behind the HTTP sync endpoint.
type Memory struct {
	mu    sync.RWMutex
	state *model.LastFeedState
}

// NewMemory returns an empty in-process slot.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(ctx context.Context, state model.LastFeedState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Last write wins; an identical timestamp republished is a no-op.
	if m.state != nil && m.state.Timestamp.Equal(state.Timestamp) {
		return nil
	}
	s := state
	m.state = &s
	return nil
}

func (m *Memory) FetchLatest(ctx context.Context) (*model.LastFeedState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil, ErrNoState
	}
	s := *m.state
	return &s, nil
}
