package config

import (
	"os"
	"testing"
)

func unsetTrackdEnv() {
	_ = os.Unsetenv("TRACKD_DB_DRIVER")
	_ = os.Unsetenv("TRACKD_SYNC_DRIVER")
	_ = os.Unsetenv("TRACKD_POSTGRES_DSN")
	_ = os.Unsetenv("TRACKD_PEER_URL")
	_ = os.Unsetenv("TRACKD_HTTP_PORT")
	_ = os.Unsetenv("TRACKD_SYNC_TIMEOUT_SECONDS")
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetTrackdEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.SyncDriver != "none" {
		t.Fatalf("unexpected driver defaults: %s %s", cfg.DBDriver, cfg.SyncDriver)
	}
	if cfg.HTTPPort != 7420 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.SyncTimeoutSeconds != 5 || cfg.GlanceRefreshSeconds != 60 {
		t.Fatalf("unexpected timing defaults: %d %d", cfg.SyncTimeoutSeconds, cfg.GlanceRefreshSeconds)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	unsetTrackdEnv()
	_ = os.Setenv("TRACKD_HTTP_PORT", "9999")
	defer unsetTrackdEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Fatalf("port env override failed, got %d", cfg.HTTPPort)
	}
}

func TestResolveDefaults_RejectsUnknownDrivers(t *testing.T) {
	cfg := &Config{DBDriver: "oracle"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("expected error for unknown db driver")
	}
	cfg = &Config{DBDriver: "sqlite", SyncDriver: "carrier-pigeon"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("expected error for unknown sync driver")
	}
}

func TestResolveDefaults_RequiresDriverEndpoints(t *testing.T) {
	cfg := &Config{DBDriver: "postgres"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("postgres without DSN should fail")
	}
	cfg = &Config{DBDriver: "sqlite", SyncDriver: "http"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("http sync without peer URL should fail")
	}
}

func TestResolveDefaults_AutoDriver(t *testing.T) {
	cfg := &Config{DBDriver: "auto"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("auto should map to sqlite, got %s", cfg.DBDriver)
	}
}
