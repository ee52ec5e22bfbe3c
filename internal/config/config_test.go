package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.MongoDB.DBName != "feedengine" {
		t.Errorf("expected default db name, got %s", cfg.MongoDB.DBName)
	}
	if cfg.Engine.LookbackDays != 30 {
		t.Errorf("expected default lookback 30, got %d", cfg.Engine.LookbackDays)
	}
	if cfg.Scheduler.CatchUpCron == "" {
		t.Error("expected a default catch-up schedule")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENGINE_LOOKBACK_DAYS", "7")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.LookbackDays != 7 {
		t.Errorf("expected lookback 7, got %d", cfg.Engine.LookbackDays)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidLookback(t *testing.T) {
	t.Setenv("ENGINE_LOOKBACK_DAYS", "soon")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "ENGINE_LOOKBACK_DAYS") {
		t.Fatalf("expected lookback parse error, got %v", err)
	}
}

func TestValidateRejectsPartialSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for partially configured sheets export")
	}
}
