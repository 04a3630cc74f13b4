package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "nocturne"

// ConfigDir returns the base configuration directory for nocturne
// ($XDG_CONFIG_HOME/nocturne, with the usual platform fallbacks).
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DataDir returns the data directory used for the history database.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// PersonasDir returns the directory where user persona files are stored.
// Files here override the embedded personas of the same name.
func PersonasDir() string {
	return filepath.Join(ConfigDir(), "personas")
}

// SettingsPath returns the path of the main settings file.
func SettingsPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// HistoryDBPath returns the default path of the transcript history database.
func HistoryDBPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// SocketPath returns the daemon's unix socket path. Prefers the runtime dir
// when the platform provides one.
func SocketPath() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName+".sock")
	}
	return filepath.Join(DataDir(), "daemon.sock")
}

// EnsureDirs creates the config, personas, and data directories if missing.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), PersonasDir(), DataDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
