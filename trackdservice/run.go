// Package trackdservice boots the per-device ledger service: config,
// store, bus, sync channel, router, HTTP server, graceful shutdown.
package trackdservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurturefox/trackd/internal/api"
	"github.com/nurturefox/trackd/internal/config"
	"github.com/nurturefox/trackd/internal/events"
	"github.com/nurturefox/trackd/internal/keyring"
	"github.com/nurturefox/trackd/internal/localstate"
	"github.com/nurturefox/trackd/internal/logger"
	"github.com/nurturefox/trackd/internal/services"
	"github.com/nurturefox/trackd/internal/settings"
	"github.com/nurturefox/trackd/internal/store"
	"github.com/nurturefox/trackd/internal/store/postgres"
	"github.com/nurturefox/trackd/internal/store/sqlite"
	"github.com/nurturefox/trackd/internal/syncer"
)

// Run starts the trackd HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("trackd")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log.Info().
		Str("device", cfg.DeviceName).
		Str("db_driver", cfg.DBDriver).
		Str("sync_driver", cfg.SyncDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("trackd starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("ledger store unavailable")
		return err
	}
	defer func() { _ = st.Close() }()

	channel, closeChannel, err := newChannel(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("sync channel unavailable")
		return err
	}
	defer closeChannel()

	bus := events.NewBus(64)
	defer bus.Close()

	deps, err := buildDeps(cfg, st, bus, channel, log)
	if err != nil {
		return err
	}
	router := api.NewRouter(deps)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore selects the ledger driver from config.
func newStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(cfg.PostgresDSN)
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			var err error
			path, err = localstate.DBPath()
			if err != nil {
				return nil, err
			}
		}
		log.Info().Str("path", path).Msg("opening embedded ledger")
		return sqlite.New(path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// newChannel selects the sync-channel driver. The returned close function
// is a no-op for drivers without a connection to tear down.
func newChannel(cfg *config.Config, log zerolog.Logger) (syncer.Channel, func(), error) {
	timeout := time.Duration(cfg.SyncTimeoutSeconds) * time.Second
	switch cfg.SyncDriver {
	case "none":
		return syncer.Noop{}, func() {}, nil
	case "memory":
		return syncer.Instrument(syncer.NewMemory()), func() {}, nil
	case "nats":
		nc, err := syncer.ConnectNATSWithRetry(cfg.NATSURL, timeout)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("url", cfg.NATSURL).Msg("connected to NATS slot")
		return syncer.Instrument(nc), nc.Close, nil
	case "http":
		log.Info().Str("peer", cfg.PeerURL).Msg("using peer HTTP slot")
		return syncer.Instrument(syncer.NewHTTP(cfg.PeerURL, timeout)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SYNC_DRIVER: %s", cfg.SyncDriver)
	}
}

// buildDeps wires services and surface dependencies for the router.
func buildDeps(cfg *config.Config, st store.Store, bus *events.Bus, channel syncer.Channel, log zerolog.Logger) (api.Deps, error) {
	settingsPath, err := localstate.SettingsPath()
	if err != nil {
		return api.Deps{}, err
	}
	set := settings.NewStore(settingsPath)

	var key []byte
	if cfg.SealBackups {
		keyPath, err := localstate.KeyPath()
		if err != nil {
			return api.Deps{}, err
		}
		key, err = keyring.Load(keyPath)
		if err != nil {
			return api.Deps{}, err
		}
	}

	// The service always hosts a slot of its own so companions (foxctl
	// status, another device's http driver) have something to read. The
	// nats and memory drivers are that slot; for none and http a local
	// in-process slot is added and the ledger publishes through both.
	slot := channel
	switch cfg.SyncDriver {
	case "none":
		slot = syncer.NewMemory()
		channel = slot
	case "http":
		slot = syncer.NewMemory()
		channel = syncer.NewMulti(slot, channel)
	}

	publishTimeout := time.Duration(cfg.SyncTimeoutSeconds) * time.Second
	ledger := services.NewLedger(st, bus, channel, publishTimeout, log)

	return api.Deps{
		Store:      st,
		Ledger:     ledger,
		Summary:    services.NewSummary(st),
		Milestones: services.NewMilestones(st, set),
		Settings:   set,
		Slot:       slot,
		BackupKey:  key,
		SealBackup: cfg.SealBackups,
		Log:        log,
	}, nil
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// WriteTimeout stays 0: /api/stream holds a websocket open for the
		// life of the companion connection.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context bound to SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
