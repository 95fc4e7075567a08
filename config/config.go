// Package config loads and persists server settings from a JSON file, with
// environment variable overrides for container deployments.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Settings holds every tunable the server reads at startup.
type Settings struct {
	ListenAddr      string `json:"listenAddr"`
	DataDir         string `json:"dataDir"`
	DatabasePath    string `json:"databasePath"`
	ArtworkDir      string `json:"artworkDir"`
	LogPath         string `json:"logPath"`
	SessionHours    int    `json:"sessionHours"`
	SeedDemoCatalog bool   `json:"seedDemoCatalog"`
	LoginRatePerMin int    `json:"loginRatePerMin"`
	LoginRateBurst  int    `json:"loginRateBurst"`
}

// SessionDuration converts the configured hours to a duration.
func (s Settings) SessionDuration() time.Duration {
	return time.Duration(s.SessionHours) * time.Hour
}

// Defaults returns the settings used when no config file exists.
func Defaults() Settings {
	return Settings{
		ListenAddr:      ":8080",
		DataDir:         "data",
		DatabasePath:    filepath.Join("data", "cinevault.db"),
		ArtworkDir:      filepath.Join("data", "artwork"),
		LogPath:         filepath.Join("data", "logs", "cinevault.log"),
		SessionHours:    24 * 30,
		SeedDemoCatalog: true,
		LoginRatePerMin: 10,
		LoginRateBurst:  5,
	}
}

// Manager loads and persists settings.
type Manager struct {
	mu   sync.RWMutex
	path string
}

// NewManager creates a manager for the config file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads settings from disk, fills in defaults for missing fields, and
// applies environment overrides. A missing file yields defaults plus
// overrides, not an error.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings := Defaults()

	data, err := os.ReadFile(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&settings)

	if settings.SessionHours <= 0 {
		settings.SessionHours = Defaults().SessionHours
	}
	if settings.LoginRatePerMin <= 0 {
		settings.LoginRatePerMin = Defaults().LoginRatePerMin
	}
	if settings.LoginRateBurst <= 0 {
		settings.LoginRateBurst = Defaults().LoginRateBurst
	}

	return settings, nil
}

// Save writes settings to disk atomically.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config temp file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

// applyEnvOverrides lets deployments override file values without editing
// the config.
func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("CINEVAULT_LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
	if v := os.Getenv("CINEVAULT_DATA_DIR"); v != "" {
		s.DataDir = v
		s.DatabasePath = filepath.Join(v, "cinevault.db")
		s.ArtworkDir = filepath.Join(v, "artwork")
		s.LogPath = filepath.Join(v, "logs", "cinevault.log")
	}
	if v := os.Getenv("CINEVAULT_DATABASE_PATH"); v != "" {
		s.DatabasePath = v
	}
	if v := os.Getenv("CINEVAULT_SESSION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			s.SessionHours = hours
		}
	}
	if v := os.Getenv("CINEVAULT_SEED_DEMO"); v != "" {
		if seed, err := strconv.ParseBool(v); err == nil {
			s.SeedDemoCatalog = seed
		}
	}
}
