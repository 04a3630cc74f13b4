package scenario

// Scenario is one named interaction template from the persona configuration.
type Scenario struct {
	ID          string  `toml:"id"`
	Name        string  `toml:"name"`
	Category    string  `toml:"category"`
	Mood        string  `toml:"mood"`
	Description string  `toml:"description"`
	Weight      float64 `toml:"weight"`
	// Intensity is the scenario's nominal intensity level, used to match
	// against the user's preferred intensity during weighting.
	Intensity float64 `toml:"intensity"`
}

// Preferences captures the contextual inputs that shape scenario weighting.
type Preferences struct {
	Category           string   // filter: only scenarios in this category ("" = all)
	Mood               string   // filter: only scenarios matching this mood ("" = all)
	PreferredIntensity float64  // 0.0-1.0
	Favorites          []string // scenario IDs boosted 1.5x
	SoftLimits         []string // scenario IDs damped 0.5x
	HardLimits         []string // scenario IDs excluded entirely
	InteractionCount   int      // variety boost kicks in past varietyThreshold
}

const (
	favoriteBoost    = 1.5
	softLimitFactor  = 0.5
	varietyBoost     = 1.2
	varietyThreshold = 10
	minIntensityFit  = 0.3
)

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// filter returns the scenarios that survive category, mood and hard-limit
// checks, preserving input order.
func filter(scenarios []Scenario, prefs Preferences) []Scenario {
	out := make([]Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if prefs.Category != "" && s.Category != prefs.Category {
			continue
		}
		if prefs.Mood != "" && s.Mood != prefs.Mood {
			continue
		}
		if contains(prefs.HardLimits, s.ID) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// weigh computes the contextual weight for a scenario.
func weigh(s Scenario, prefs Preferences) float64 {
	w := s.Weight
	if w <= 0 {
		w = 1.0
	}

	if contains(prefs.Favorites, s.ID) {
		w *= favoriteBoost
	}

	// Closer intensity match scores higher; floor keeps every scenario viable.
	fit := 1.0 - abs(s.Intensity-prefs.PreferredIntensity)
	if fit < minIntensityFit {
		fit = minIntensityFit
	}
	w *= fit

	if contains(prefs.SoftLimits, s.ID) {
		w *= softLimitFactor
	}

	if prefs.InteractionCount > varietyThreshold && !contains(prefs.Favorites, s.ID) {
		w *= varietyBoost
	}

	return w
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
