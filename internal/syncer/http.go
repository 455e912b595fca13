package syncer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/nurturefox/trackd/internal/model"
)

const slotPath = "/api/sync/last-feed"

// HTTP implements Channel against another trackd device's slot endpoint.
// Publish retries briefly with exponential backoff and then gives up;
// an unreachable companion degrades the glance display, nothing more.
type HTTP struct {
	rest       *resty.Client
	maxElapsed time.Duration
}

// NewHTTP builds a channel for the peer's base URL. timeout bounds each
// round trip; every operation is additionally bounded by its ctx.
func NewHTTP(peerURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rest := resty.New().
		SetBaseURL(peerURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HTTP{rest: rest, maxElapsed: timeout}
}

func (h *HTTP) Publish(ctx context.Context, state model.LastFeedState) error {
	op := func() error {
		resp, err := h.rest.R().
			SetContext(ctx).
			SetBody(state).
			Put(slotPath)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("publish slot: status %d", resp.StatusCode())
		}
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = h.maxElapsed
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

func (h *HTTP) FetchLatest(ctx context.Context) (*model.LastFeedState, error) {
	var state model.LastFeedState
	resp, err := h.rest.R().
		SetContext(ctx).
		SetResult(&state).
		Get(slotPath)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNoState
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch slot: status %d", resp.StatusCode())
	}
	return &state, nil
}
