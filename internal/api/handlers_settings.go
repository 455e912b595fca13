package api

import (
	"encoding/json"
	"net/http"

	"github.com/nurturefox/trackd/internal/api/respond"
	"github.com/nurturefox/trackd/internal/settings"
)

// SettingsHandler reads and writes the caregiver preferences document.
type SettingsHandler struct {
	store *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetSettings GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Load()
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, cfg)
}

// PutSettings PUT /api/settings
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := h.store.Save(cfg); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, cfg)
}
