package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Settings struct {
	Persona PersonaSettings `toml:"persona"`
	History HistorySettings `toml:"history"`
	Redis   RedisSettings   `toml:"redis"`
	Daemon  DaemonSettings  `toml:"daemon"`
}

type PersonaSettings struct {
	Default string `toml:"default"`
	Context string `toml:"context"`
	State   string `toml:"state"`
}

type HistorySettings struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type RedisSettings struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	DB         int    `toml:"db"`
	Prefix     string `toml:"prefix"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

type DaemonSettings struct {
	Socket string `toml:"socket"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Persona: PersonaSettings{
			Default: "nocturne",
			Context: "casual",
			State:   "serene",
		},
		History: HistorySettings{
			Enabled: true,
			Path:    HistoryDBPath(),
		},
		Redis: RedisSettings{
			Enabled: false,
			Addr:    "localhost:6379",
			Prefix:  "nocturne",
		},
		Daemon: DaemonSettings{
			Socket: SocketPath(),
		},
	}
}

// LoadSettings reads the settings file, falling back to defaults when it is
// absent. A file that exists but cannot be parsed is a fatal error.
func LoadSettings() (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SettingsPath(), err)
	}

	if settings.History.Path == "" {
		settings.History.Path = HistoryDBPath()
	}
	if settings.Daemon.Socket == "" {
		settings.Daemon.Socket = SocketPath()
	}

	return settings, nil
}

// WriteDefaultSettings writes the default settings file if none exists.
func WriteDefaultSettings() (string, error) {
	if err := EnsureDirs(); err != nil {
		return "", err
	}
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(DefaultSettings()); err != nil {
		return "", err
	}
	return path, nil
}
