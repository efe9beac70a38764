package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AppConfig holds all persistent user settings.
type AppConfig struct {
	LogLevel      string `json:"logLevel"`
	WindowWidth   int    `json:"windowWidth"`
	WindowHeight  int    `json:"windowHeight"`
	Notifications *bool  `json:"notifications"` // nil = true (default on)
	ShareEnabled  bool   `json:"shareEnabled"`
	SharePort     int    `json:"sharePort"`
	RetentionDays int    `json:"retentionDays"` // drop history retention
}

// IsNotifications returns whether drop notifications are enabled (default true).
func (c *AppConfig) IsNotifications() bool {
	return c.Notifications == nil || *c.Notifications
}

var (
	appDataDir     string
	appDataDirOnce sync.Once
)

// DefaultConfig returns config with default values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		LogLevel:      "error",
		WindowWidth:   900,
		WindowHeight:  640,
		SharePort:     8090,
		RetentionDays: 30,
	}
}

// AppDataDir returns the path to ~/.dropdock/, creating it if needed.
func AppDataDir() string {
	appDataDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			// Fallback to exe directory
			if exe, err2 := os.Executable(); err2 == nil {
				appDataDir = filepath.Dir(exe)
			} else {
				appDataDir = "."
			}
			return
		}
		appDataDir = filepath.Join(home, ".dropdock")
		os.MkdirAll(appDataDir, 0755)
	})
	return appDataDir
}

// DataPath returns the full path for a file inside the data directory.
func DataPath(elem ...string) string {
	parts := append([]string{AppDataDir()}, elem...)
	return filepath.Join(parts...)
}

// configPath returns the config file path.
func configPath() string {
	return DataPath("config.json")
}

// LoadConfig reads config from ~/.dropdock/config.json.
// Returns default config if file doesn't exist.
func LoadConfig() *AppConfig {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		fmt.Printf("config file unreadable, using defaults: %v\n", err)
		return DefaultConfig()
	}

	normalizeConfig(cfg)
	return cfg
}

// normalizeConfig backfills zero or out-of-range values with defaults.
func normalizeConfig(cfg *AppConfig) {
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 900
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 640
	}
	if cfg.SharePort <= 0 || cfg.SharePort > 65535 {
		cfg.SharePort = 8090
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
}

// SaveConfig writes the config to ~/.dropdock/config.json.
func SaveConfig(cfg *AppConfig) error {
	os.MkdirAll(AppDataDir(), 0755)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0644)
}
