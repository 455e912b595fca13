package api

import (
	"net/http"

	"github.com/nurturefox/trackd/internal/api/respond"
	"github.com/nurturefox/trackd/internal/backup"
	"github.com/nurturefox/trackd/internal/services"
	"github.com/nurturefox/trackd/internal/store"
)

// BackupHandler exports and restores the ledger. Import is destructive, so
// it demands an explicit confirm flag on the request.
type BackupHandler struct {
	store  store.Store
	ledger *services.Ledger
	key    []byte // nil disables sealed mode
	sealed bool
}

func NewBackupHandler(s store.Store, ledger *services.Ledger, key []byte, sealed bool) *BackupHandler {
	return &BackupHandler{store: s, ledger: ledger, key: key, sealed: sealed}
}

// Export GET /api/backup/export
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.sealed {
		blob, err := backup.ExportSealed(r.Context(), h.store, h.key)
		if err != nil {
			respond.WriteInternalError(w, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="trackd-backup.sealed"`)
		_, _ = w.Write(blob)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trackd-backup.csv"`)
	if err := backup.Export(r.Context(), h.store, w); err != nil {
		respond.WriteInternalError(w, err.Error())
	}
}

// Import POST /api/backup/import?confirm=true
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respond.WriteBadRequest(w, "import replaces the entire ledger; pass confirm=true")
		return
	}

	var (
		n   int
		err error
	)
	if h.sealed {
		n, err = backup.ReadAllAndImportSealed(r.Context(), h.store, h.key, r.Body)
	} else {
		n, err = backup.Import(r.Context(), h.store, r.Body)
	}
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	h.ledger.NotifyReplaced()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"imported": n})
}
