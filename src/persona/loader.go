package persona

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"nocturne/src/config"
	"nocturne/src/nerrors"
)

//go:embed data/*.toml
var embeddedPersonas embed.FS

var (
	personaCache     = make(map[string]*Config)
	personaCacheLock sync.RWMutex
)

// LoadConfig loads a persona by name or alias, checking the user's personas
// directory first, then falling back to the embedded set. Parsed configs are
// cached for the process lifetime; they are read-only after load.
func LoadConfig(nameOrAlias string) (*Config, error) {
	name := strings.ToLower(nameOrAlias)

	personaCacheLock.RLock()
	if cached, ok := personaCache[name]; ok {
		personaCacheLock.RUnlock()
		return cached, nil
	}
	personaCacheLock.RUnlock()

	cfg, err := loadFromUserConfig(name)
	if err != nil {
		cfg, err = loadFromEmbedded(name)
	}
	if err != nil {
		return nil, nerrors.WrapWithContext(nerrors.ErrPersonaNotFound, "persona %q", nameOrAlias)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	cachePersona(name, cfg)
	return cfg, nil
}

// List returns the IDs of all embedded personas plus any user persona files.
func List() []string {
	seen := make(map[string]bool)
	var ids []string

	entries, err := embeddedPersonas.ReadDir("data")
	if err == nil {
		for _, e := range entries {
			id := strings.TrimSuffix(e.Name(), ".toml")
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	userEntries, err := os.ReadDir(config.PersonasDir())
	if err == nil {
		for _, e := range userEntries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
				continue
			}
			id := strings.TrimSuffix(e.Name(), ".toml")
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids
}

func loadFromUserConfig(name string) (*Config, error) {
	path := filepath.Join(config.PersonasDir(), name+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

func loadFromEmbedded(name string) (*Config, error) {
	data, err := embeddedPersonas.ReadFile(fmt.Sprintf("data/%s.toml", name))
	if err == nil {
		return parseConfig(data)
	}

	// Fall back to alias scan across all embedded personas.
	entries, err := embeddedPersonas.ReadDir("data")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := embeddedPersonas.ReadFile("data/" + e.Name())
		if err != nil {
			continue
		}
		cfg, err := parseConfig(data)
		if err != nil {
			continue
		}
		for _, alias := range cfg.Metadata.Aliases {
			if strings.EqualFold(alias, name) {
				return cfg, nil
			}
		}
	}
	return nil, nerrors.ErrPersonaNotFound
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, nerrors.WrapWithContext(nerrors.ErrConfigMalformed, "%v", err)
	}
	return &cfg, nil
}

// validate rejects persona files missing the tables the engine depends on.
func validate(cfg *Config) error {
	if cfg.Metadata.ID == "" {
		return &nerrors.ValidationError{Field: "metadata.id", Message: "must not be empty"}
	}
	for _, tier := range Tiers() {
		if _, ok := cfg.Tiers[string(tier)]; !ok {
			return &nerrors.ValidationError{Field: "tiers." + string(tier), Message: "missing base intensity"}
		}
	}
	for _, ctx := range Contexts() {
		if _, ok := cfg.Contexts[string(ctx)]; !ok {
			return &nerrors.ValidationError{Field: "contexts." + string(ctx), Message: "missing intensity multiplier"}
		}
	}
	for id, text := range map[string]string{
		GreetingMidnight:       cfg.Greetings[GreetingMidnight],
		GreetingFirstEncounter: cfg.Greetings[GreetingFirstEncounter],
		GreetingReturning:      cfg.Greetings[GreetingReturning],
	} {
		if text == "" {
			return &nerrors.ValidationError{Field: "greetings." + id, Message: "missing greeting template"}
		}
	}
	if cfg.Progression.EstablishedAfter <= 0 {
		cfg.Progression.EstablishedAfter = 5
	}
	if cfg.Progression.IntimateAfter <= cfg.Progression.EstablishedAfter {
		cfg.Progression.IntimateAfter = cfg.Progression.EstablishedAfter + 10
	}
	return nil
}

func cachePersona(name string, cfg *Config) {
	personaCacheLock.Lock()
	defer personaCacheLock.Unlock()
	personaCache[name] = cfg
	personaCache[strings.ToLower(cfg.Metadata.ID)] = cfg
	for _, alias := range cfg.Metadata.Aliases {
		personaCache[strings.ToLower(alias)] = cfg
	}
}

// ClearCache evicts all cached personas. Intended for tests.
func ClearCache() {
	personaCacheLock.Lock()
	defer personaCacheLock.Unlock()
	personaCache = make(map[string]*Config)
}
