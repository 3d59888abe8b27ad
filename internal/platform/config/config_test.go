package config_test

import (
	"path/filepath"
	"testing"

	"nadi/internal/platform/config"
)

func TestNewBuildsPathsUnderHome(t *testing.T) {
	cfg, err := config.New("/tmp/home")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/tmp/home", ".nadi", "nadi.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.SettingsPath != filepath.Join("/tmp/home", ".nadi", "settings.yaml") {
		t.Fatalf("unexpected settings path: %s", cfg.SettingsPath)
	}
}

func TestNewRequiresHome(t *testing.T) {
	if _, err := config.New(""); err == nil {
		t.Fatal("expected error for empty home path")
	}
}

func TestEnvOverrideWins(t *testing.T) {
	t.Setenv("NADI_HOME", "/tmp/elsewhere")
	cfg, err := config.New("/tmp/home")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.HomePath != "/tmp/elsewhere" {
		t.Fatalf("expected env override, got %s", cfg.HomePath)
	}
}
