package persona

import (
	"strings"

	"nocturne/src/nerrors"
	"nocturne/src/scenario"
)

// Config is a persona definition loaded from a TOML document.
type Config struct {
	Metadata    MetadataConfig    `toml:"metadata"`
	Display     DisplayConfig     `toml:"display"`
	Progression ProgressionConfig `toml:"progression"`
	Nocturnal   NocturnalConfig   `toml:"nocturnal"`

	// Tiers maps a familiarity tier label to its base glitch intensity.
	Tiers map[string]float64 `toml:"tiers"`
	// Contexts maps a conversation context label to its intensity multiplier.
	Contexts map[string]float64 `toml:"contexts"`
	// Overrides maps a context label to a fixed glitch intensity that
	// replaces the computed one when rendering (crisis damping).
	Overrides map[string]float64 `toml:"overrides"`

	Traits    []TraitConfig       `toml:"traits"`
	Greetings map[string]string   `toml:"greetings"`
	Dialogue  map[string][]string `toml:"dialogue"`
	Layers    map[string][]string `toml:"layers"`
	Samples   map[string][]string `toml:"samples"`

	Scenarios []scenario.Scenario `toml:"scenarios"`
}

type MetadataConfig struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Description string   `toml:"description"`
	Aliases     []string `toml:"aliases"`
}

type DisplayConfig struct {
	Color string `toml:"color"`
	Icon  string `toml:"icon"`
}

// ProgressionConfig holds the interaction-count thresholds at which the
// familiarity tier advances. Crossings are monotonic; the tier never regresses.
type ProgressionConfig struct {
	EstablishedAfter int `toml:"established_after"`
	IntimateAfter    int `toml:"intimate_after"`
}

// NocturnalConfig is the [StartHour, EndHour) window in which the midnight
// greeting overrides tier-based selection.
type NocturnalConfig struct {
	StartHour int `toml:"start_hour"`
	EndHour   int `toml:"end_hour"`
}

type TraitConfig struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Intensity   float64  `toml:"intensity"`
	Triggers    []string `toml:"triggers"`
}

// Greeting template IDs.
const (
	GreetingMidnight       = "midnight"
	GreetingFirstEncounter = "first_encounter"
	GreetingReturning      = "returning"
)

// BaseIntensity returns the base glitch intensity for a familiarity tier.
func (c *Config) BaseIntensity(tier Tier) (float64, error) {
	v, ok := c.Tiers[string(tier)]
	if !ok {
		return 0, nerrors.NewUnknownKey("familiarity_tier", string(tier))
	}
	return v, nil
}

// Multiplier returns the intensity multiplier for a conversation context.
func (c *Config) Multiplier(ctx Context) (float64, error) {
	v, ok := c.Contexts[string(ctx)]
	if !ok {
		return 0, nerrors.NewUnknownKey("conversation_context", string(ctx))
	}
	return v, nil
}

// Override reports the fixed glitch intensity configured for a context,
// if any. Used by Respond to damp glitch output during crisis turns.
func (c *Config) Override(ctx Context) (float64, bool) {
	v, ok := c.Overrides[string(ctx)]
	return v, ok
}

// Trait looks up a behavioral trait by name, case-insensitively.
func (c *Config) Trait(name string) (TraitConfig, bool) {
	for _, t := range c.Traits {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return TraitConfig{}, false
}
