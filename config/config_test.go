package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))

	settings, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", settings.ListenAddr)
	}
	if !settings.SeedDemoCatalog {
		t.Error("SeedDemoCatalog should default to true")
	}
	if settings.SessionDuration() != 720*time.Hour {
		t.Errorf("SessionDuration() = %v", settings.SessionDuration())
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManager(path)

	settings := Defaults()
	settings.ListenAddr = ":9999"
	settings.SessionHours = 48
	settings.SeedDemoCatalog = false

	if err := m.Save(settings); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q", loaded.ListenAddr)
	}
	if loaded.SessionHours != 48 {
		t.Errorf("SessionHours = %d", loaded.SessionHours)
	}
	if loaded.SeedDemoCatalog {
		t.Error("SeedDemoCatalog should stay false")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("malformed config should fail loudly, not silently use defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CINEVAULT_LISTEN_ADDR", ":7070")
	t.Setenv("CINEVAULT_DATA_DIR", "/var/lib/cinevault")
	t.Setenv("CINEVAULT_SESSION_HOURS", "12")
	t.Setenv("CINEVAULT_SEED_DEMO", "false")

	settings, err := NewManager(filepath.Join(t.TempDir(), "config.json")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q", settings.ListenAddr)
	}
	if settings.DatabasePath != filepath.Join("/var/lib/cinevault", "cinevault.db") {
		t.Errorf("DatabasePath = %q", settings.DatabasePath)
	}
	if settings.SessionHours != 12 {
		t.Errorf("SessionHours = %d", settings.SessionHours)
	}
	if settings.SeedDemoCatalog {
		t.Error("SeedDemoCatalog should be overridden to false")
	}
}

func TestLoadSanitizesNonPositiveValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"sessionHours": -5, "loginRatePerMin": 0}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	settings, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.SessionHours != Defaults().SessionHours {
		t.Errorf("SessionHours = %d, want default", settings.SessionHours)
	}
	if settings.LoginRatePerMin != Defaults().LoginRatePerMin {
		t.Errorf("LoginRatePerMin = %d, want default", settings.LoginRatePerMin)
	}
}
