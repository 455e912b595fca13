package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the trackd service.
// Environment variables are parsed from the TRACKD_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// DeviceName identifies this install in logs and sync payloads.
	DeviceName string `envconfig:"DEVICE_NAME" default:"trackd"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"7420"`

	// Ledger storage: sqlite (embedded, default) or postgres (shared household).
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Sync channel: none, memory, nats, or http.
	SyncDriver string `envconfig:"SYNC_DRIVER" default:"none"`
	NATSURL    string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	// PeerURL is the base URL of another device's trackd API for the http driver.
	PeerURL string `envconfig:"PEER_URL" default:""`
	// SyncTimeoutSeconds bounds every publish/fetch; glance refreshes must
	// never wedge a rendering path waiting on the channel.
	SyncTimeoutSeconds int `envconfig:"SYNC_TIMEOUT_SECONDS" default:"5"`

	// GlanceRefreshSeconds is the elapsed-string recompute cadence.
	GlanceRefreshSeconds int `envconfig:"GLANCE_REFRESH_SECONDS" default:"60"`

	// SealBackups encrypts backup archives with the per-install key.
	SealBackups bool `envconfig:"SEAL_BACKUPS" default:"false"`
}

// ResolveDefaults validates driver selections and normalizes empty values.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = "sqlite"
	}
	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("postgres driver requires POSTGRES_DSN")
	}

	if c.SyncDriver == "" {
		c.SyncDriver = "none"
	}
	allowedSync := map[string]bool{"none": true, "memory": true, "nats": true, "http": true}
	if !allowedSync[c.SyncDriver] {
		return fmt.Errorf("unsupported SYNC_DRIVER: %s", c.SyncDriver)
	}
	if c.SyncDriver == "http" && c.PeerURL == "" {
		return fmt.Errorf("http sync driver requires PEER_URL")
	}

	if c.SyncTimeoutSeconds <= 0 {
		c.SyncTimeoutSeconds = 5
	}
	if c.GlanceRefreshSeconds <= 0 {
		c.GlanceRefreshSeconds = 60
	}
	return nil
}

// New creates a Config by parsing TRACKD_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TRACKD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewForTesting creates a config suitable for tests: in-memory-ish defaults,
// no external channel.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:          EnvTesting,
		DeviceName:           "trackd-test",
		HTTPPort:             7420,
		DBDriver:             "sqlite",
		SyncDriver:           "memory",
		SyncTimeoutSeconds:   1,
		GlanceRefreshSeconds: 1,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
