package persona

import (
	"errors"
	"testing"

	"nocturne/src/nerrors"
)

func TestLoadConfigEmbedded(t *testing.T) {
	cfg, err := LoadConfig("nocturne")
	if err != nil {
		t.Fatalf("LoadConfig(nocturne) failed: %v", err)
	}

	if cfg.Metadata.ID != "nocturne" {
		t.Errorf("Metadata.ID = %q, want nocturne", cfg.Metadata.ID)
	}
	for _, id := range []string{GreetingMidnight, GreetingFirstEncounter, GreetingReturning} {
		if cfg.Greetings[id] == "" {
			t.Errorf("greeting %q is empty", id)
		}
	}
	for _, tier := range Tiers() {
		if _, ok := cfg.Tiers[string(tier)]; !ok {
			t.Errorf("tier %q missing from base intensity table", tier)
		}
	}
	if len(cfg.Scenarios) == 0 {
		t.Error("scenario table is empty")
	}
}

func TestLoadConfigByAlias(t *testing.T) {
	direct, err := LoadConfig("nocturne")
	if err != nil {
		t.Fatal(err)
	}

	for _, alias := range []string{"nv", "vaelis", "NV"} {
		cfg, err := LoadConfig(alias)
		if err != nil {
			t.Errorf("LoadConfig(%q) failed: %v", alias, err)
			continue
		}
		if cfg.Metadata.ID != direct.Metadata.ID {
			t.Errorf("LoadConfig(%q) resolved to %q, want %q", alias, cfg.Metadata.ID, direct.Metadata.ID)
		}
	}
}

func TestLoadConfigCaseInsensitive(t *testing.T) {
	cfg, err := LoadConfig("Nocturne")
	if err != nil {
		t.Fatalf("LoadConfig(Nocturne) failed: %v", err)
	}
	if cfg.Metadata.ID != "nocturne" {
		t.Errorf("Metadata.ID = %q, want nocturne", cfg.Metadata.ID)
	}
}

func TestLoadConfigUnknown(t *testing.T) {
	_, err := LoadConfig("no-such-persona")
	if err == nil {
		t.Fatal("expected error for unknown persona")
	}
	if !errors.Is(err, nerrors.ErrPersonaNotFound) {
		t.Errorf("error %v does not wrap ErrPersonaNotFound", err)
	}
	if !nerrors.IsNotFound(err) {
		t.Error("IsNotFound should report true for unknown persona")
	}
}

func TestLoadConfigCached(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	first, err := LoadConfig("nocturne")
	if err != nil {
		t.Fatal(err)
	}
	second, err := LoadConfig("nocturne")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second load returned a different instance, want the cached one")
	}
}

func TestList(t *testing.T) {
	ids := List()

	want := map[string]bool{"nocturne": false, "meridian": false}
	for _, id := range ids {
		if _, ok := want[id]; ok {
			want[id] = true
		}
	}
	for id, found := range want {
		if !found {
			t.Errorf("List() missing embedded persona %q (got %v)", id, ids)
		}
	}
}
