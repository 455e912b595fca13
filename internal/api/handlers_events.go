// Package api is the HTTP transport over the ledger services.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nurturefox/trackd/internal/api/respond"
	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/services"
)

// EventsHandler is a thin transport over services.Ledger.
type EventsHandler struct {
	ledger *services.Ledger
}

func NewEventsHandler(ledger *services.Ledger) *EventsHandler {
	return &EventsHandler{ledger: ledger}
}

// CreateEvent POST /api/events
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.Event
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}

	var (
		out *model.Event
		err error
	)
	switch req.Kind {
	case model.KindFeed:
		if req.Feed == nil {
			respond.WriteBadRequest(w, "feed payload required")
			return
		}
		out, err = h.ledger.LogFeed(r.Context(), req.Feed.Amount, req.Feed.Unit, req.OccurredAt)
	case model.KindDiaper:
		if req.Diaper == nil {
			respond.WriteBadRequest(w, "diaper payload required")
			return
		}
		out, err = h.ledger.LogDiaper(r.Context(), req.Diaper.Contents, req.OccurredAt)
	default:
		respond.WriteBadRequest(w, "unknown event kind")
		return
	}
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListEvents GET /api/events?kind=&before=&after=&limit=
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	req, err := parseListQuery(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	evs, err := h.ledger.List(r.Context(), req)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": evs, "count": len(evs)})
}

// GetEvent GET /api/events/{id}
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// UpdateEvent PUT /api/events/{id}
func (h *EventsHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.Event
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	req.ID = mux.Vars(r)["id"]
	out, err := h.ledger.Update(r.Context(), &req)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEvent DELETE /api/events/{id}
func (h *EventsHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respond.WriteModelError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LatestFeed GET /api/events/latest-feed
func (h *EventsHandler) LatestFeed(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.LatestFeed(r.Context())
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func parseListQuery(r *http.Request) (model.ListEventsRequest, error) {
	var req model.ListEventsRequest
	q := r.URL.Query()

	if v := q.Get("kind"); v != "" {
		kind := model.EventKind(v)
		req.Kind = &kind
	}
	if v := q.Get("before"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, err
		}
		req.Before = &ts
	}
	if v := q.Get("after"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, err
		}
		req.After = &ts
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, err
		}
		req.Limit = n
	}
	return req, nil
}
