package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nurturefox/trackd/internal/api/respond"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/syncer"
)

// SyncHandler serves the shared last-feed slot. Another device's HTTP
// channel PUTs into it and GETs from it; the slot itself enforces
// last-write-wins.
type SyncHandler struct {
	slot syncer.Channel
}

func NewSyncHandler(slot syncer.Channel) *SyncHandler {
	return &SyncHandler{slot: slot}
}

// GetSlot GET /api/sync/last-feed
func (h *SyncHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	state, err := h.slot.FetchLatest(r.Context())
	if errors.Is(err, syncer.ErrNoState) {
		respond.WriteNotFound(w, "no feed state published yet")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, state)
}

// PutSlot PUT /api/sync/last-feed
func (h *SyncHandler) PutSlot(w http.ResponseWriter, r *http.Request) {
	var state model.LastFeedState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if state.Timestamp.IsZero() {
		respond.WriteBadRequest(w, "timestamp is required")
		return
	}
	if err := h.slot.Publish(r.Context(), state); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
