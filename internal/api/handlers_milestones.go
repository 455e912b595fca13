package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nurturefox/trackd/internal/api/respond"
	"github.com/nurturefox/trackd/internal/services"
)

// MilestonesHandler is a thin transport over services.Milestones.
type MilestonesHandler struct {
	svc *services.Milestones
}

func NewMilestonesHandler(svc *services.Milestones) *MilestonesHandler {
	return &MilestonesHandler{svc: svc}
}

// CreateMilestone POST /api/milestones
func (h *MilestonesHandler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string    `json:"name"`
		OccurredAt time.Time `json:"occurredAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), req.Name, req.OccurredAt)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListMilestones GET /api/milestones
func (h *MilestonesHandler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"milestones": recs, "count": len(recs)})
}

// DeleteMilestone DELETE /api/milestones/{id}
func (h *MilestonesHandler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respond.WriteModelError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
