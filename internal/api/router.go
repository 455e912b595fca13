package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nurturefox/trackd/internal/api/recovery"
	"github.com/nurturefox/trackd/internal/services"
	"github.com/nurturefox/trackd/internal/settings"
	"github.com/nurturefox/trackd/internal/store"
	"github.com/nurturefox/trackd/internal/syncer"
)

// Deps carries everything the router needs. All fields are
// constructor-injected by run.go; the router owns none of them.
type Deps struct {
	Store      store.Store
	Ledger     *services.Ledger
	Summary    *services.Summary
	Milestones *services.Milestones
	Settings   *settings.Store
	Slot       syncer.Channel
	BackupKey  []byte
	SealBackup bool
	Log        zerolog.Logger
}

// NewRouter wires all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	eventsHandler := NewEventsHandler(d.Ledger)
	milestonesHandler := NewMilestonesHandler(d.Milestones)
	summaryHandler := NewSummaryHandler(d.Summary, d.Settings)
	backupHandler := NewBackupHandler(d.Store, d.Ledger, d.BackupKey, d.SealBackup)
	syncHandler := NewSyncHandler(d.Slot)
	settingsHandler := NewSettingsHandler(d.Settings)
	healthHandler := NewHealthHandler(d.Store)
	streamHandler := NewStreamHandler(d.Ledger, d.Log)

	// Health and metrics
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Event ledger
	router.HandleFunc("/api/events", eventsHandler.CreateEvent).Methods("POST")
	router.HandleFunc("/api/events", eventsHandler.ListEvents).Methods("GET")
	router.HandleFunc("/api/events/latest-feed", eventsHandler.LatestFeed).Methods("GET")
	router.HandleFunc("/api/events/{id:[0-9a-fA-F-]{36}}", eventsHandler.GetEvent).Methods("GET")
	router.HandleFunc("/api/events/{id:[0-9a-fA-F-]{36}}", eventsHandler.UpdateEvent).Methods("PUT")
	router.HandleFunc("/api/events/{id:[0-9a-fA-F-]{36}}", eventsHandler.DeleteEvent).Methods("DELETE")

	// Summary
	router.HandleFunc("/api/summary", summaryHandler.GetSummary).Methods("GET")

	// Milestones
	router.HandleFunc("/api/milestones", milestonesHandler.CreateMilestone).Methods("POST")
	router.HandleFunc("/api/milestones", milestonesHandler.ListMilestones).Methods("GET")
	router.HandleFunc("/api/milestones/{id:[0-9a-fA-F-]{36}}", milestonesHandler.DeleteMilestone).Methods("DELETE")

	// Backup
	router.HandleFunc("/api/backup/export", backupHandler.Export).Methods("GET")
	router.HandleFunc("/api/backup/import", backupHandler.Import).Methods("POST")

	// Shared last-feed slot for companion devices
	router.HandleFunc("/api/sync/last-feed", syncHandler.GetSlot).Methods("GET")
	router.HandleFunc("/api/sync/last-feed", syncHandler.PutSlot).Methods("PUT")

	// Live change stream
	router.HandleFunc("/api/stream", streamHandler.Stream).Methods("GET")

	// Settings
	router.HandleFunc("/api/settings", settingsHandler.GetSettings).Methods("GET")
	router.HandleFunc("/api/settings", settingsHandler.PutSettings).Methods("PUT")

	return router
}
