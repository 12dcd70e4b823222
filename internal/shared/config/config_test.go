package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VENUE_TIMEZONE", "")
	t.Setenv("BROKER_DRIVER", "")

	cfg := Load()

	if cfg.GetAPIBasePath() != "/api/v1" {
		t.Fatalf("base path = %q", cfg.GetAPIBasePath())
	}
	if cfg.Broker.Driver != "none" {
		t.Fatalf("broker driver = %q, want none", cfg.Broker.Driver)
	}
	if cfg.Venue.Location().String() != "UTC" {
		t.Fatalf("location = %s, want UTC", cfg.Venue.Location())
	}
	if cfg.Venue.LegacyReservationTransitions {
		t.Fatalf("legacy transitions must be off by default")
	}
}

func TestLoadWithFileEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "venue.toml")
	content := `
log_level = "warn"

[server]
port = "9090"

[broker]
driver = "kafka"
brokers = ["k1:9092", "k2:9092"]

[venue]
timezone = "Europe/Berlin"
legacy_reservation_transitions = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("BROKER_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("VENUE_TIMEZONE", "")
	t.Setenv("RESERVATION_LEGACY_TRANSITIONS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile: %v", err)
	}

	if cfg.Port != "7070" {
		t.Fatalf("env must override file, port = %q", cfg.Port)
	}
	if cfg.Broker.Driver != "kafka" || len(cfg.Broker.Brokers) != 2 {
		t.Fatalf("broker = %+v", cfg.Broker)
	}
	if cfg.Venue.Location().String() != "Europe/Berlin" {
		t.Fatalf("location = %s", cfg.Venue.Location())
	}
	if !cfg.Venue.LegacyReservationTransitions {
		t.Fatalf("legacy transitions from file not applied")
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadWithFileMissing(t *testing.T) {
	if _, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
