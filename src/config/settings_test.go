package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

// pointConfigAt redirects XDG paths into a temp dir for the test's lifetime.
func pointConfigAt(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func TestLoadSettingsDefaultsWhenAbsent(t *testing.T) {
	pointConfigAt(t)

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.Persona.Default != "nocturne" {
		t.Errorf("Persona.Default = %q, want nocturne", settings.Persona.Default)
	}
	if !settings.History.Enabled {
		t.Error("History.Enabled = false, want true by default")
	}
	if settings.Redis.Enabled {
		t.Error("Redis.Enabled = true, want false by default")
	}
	if settings.History.Path == "" || settings.Daemon.Socket == "" {
		t.Error("paths not filled in from defaults")
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	pointConfigAt(t)

	if err := EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	content := `
[persona]
default = "meridian"

[history]
enabled = false

[redis]
enabled = true
addr = "10.0.0.5:6379"
`
	if err := os.WriteFile(SettingsPath(), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.Persona.Default != "meridian" {
		t.Errorf("Persona.Default = %q, want meridian", settings.Persona.Default)
	}
	if settings.History.Enabled {
		t.Error("History.Enabled = true, want false from file")
	}
	if settings.Redis.Addr != "10.0.0.5:6379" {
		t.Errorf("Redis.Addr = %q", settings.Redis.Addr)
	}

	// Unset paths still fall back to defaults.
	if settings.History.Path == "" {
		t.Error("History.Path not defaulted")
	}
}

func TestLoadSettingsMalformedFails(t *testing.T) {
	pointConfigAt(t)

	if err := EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(SettingsPath(), []byte("persona = {{{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(); err == nil {
		t.Fatal("expected error for malformed settings file")
	}
}

func TestWriteDefaultSettings(t *testing.T) {
	pointConfigAt(t)

	path, err := WriteDefaultSettings()
	if err != nil {
		t.Fatalf("WriteDefaultSettings failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file not written: %v", err)
	}

	// A second write must refuse to clobber.
	if _, err := WriteDefaultSettings(); err == nil {
		t.Error("expected error when settings file already exists")
	}

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("round-trip load failed: %v", err)
	}
	if settings.Persona.Default != "nocturne" {
		t.Errorf("round-trip Persona.Default = %q", settings.Persona.Default)
	}
}

func TestEnsureDirs(t *testing.T) {
	pointConfigAt(t)

	if err := EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{ConfigDir(), PersonasDir(), DataDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("directory %s not created: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}
