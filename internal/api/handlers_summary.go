package api

import (
	"net/http"
	"time"

	"github.com/nurturefox/trackd/internal/api/respond"
	"github.com/nurturefox/trackd/internal/services"
	"github.com/nurturefox/trackd/internal/settings"
)

// SummaryHandler computes window aggregates against the configured goal.
type SummaryHandler struct {
	svc      *services.Summary
	settings *settings.Store
}

func NewSummaryHandler(svc *services.Summary, set *settings.Store) *SummaryHandler {
	return &SummaryHandler{svc: svc, settings: set}
}

// GetSummary GET /api/summary?window=today|24h|7d
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	window := services.Window(r.URL.Query().Get("window"))
	if window == "" {
		window = services.WindowToday
	}

	cfg, err := h.settings.Load()
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	totals, err := h.svc.Window(r.Context(), window, cfg.DailyGoal, time.Now())
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, totals)
}
