package scenario

import (
	"math/rand"
	"time"

	"nocturne/src/nerrors"
)

// Selector performs weighted random scenario selection over an ordered table.
// The random source is injectable so selection is reproducible under a fixed
// seed; ties on the cumulative boundary resolve to the earlier entry.
type Selector struct {
	scenarios []Scenario
	rng       *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source used for weighted selection.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) { s.rng = r }
}

// NewSelector creates a Selector over an ordered scenario table.
func NewSelector(scenarios []Scenario, opts ...Option) *Selector {
	s := &Selector{
		scenarios: scenarios,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scenarios returns the full scenario table in input order.
func (s *Selector) Scenarios() []Scenario {
	out := make([]Scenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// Get looks up a scenario by ID.
func (s *Selector) Get(id string) (Scenario, bool) {
	for _, sc := range s.scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Select filters and weighs the table by prefs, then picks one scenario at
// random proportionally to the computed weights. When every scenario is
// filtered out it falls back to the first entry of the table.
func (s *Selector) Select(prefs Preferences) (Scenario, error) {
	if len(s.scenarios) == 0 {
		return Scenario{}, nerrors.WrapWithContext(nerrors.ErrMissingRequired, "scenario table is empty")
	}

	pool := filter(s.scenarios, prefs)
	if len(pool) == 0 {
		return s.scenarios[0], nil
	}

	weights := make([]float64, len(pool))
	for i, sc := range pool {
		weights[i] = weigh(sc, prefs)
	}

	idx := s.pickIndex(weights)
	return pool[idx], nil
}

// Pick performs a bare weighted random choice over parallel id/weight slices.
// Zero and negative weights are treated as unselectable unless every weight
// is non-positive, in which case all entries become equally likely.
func (s *Selector) Pick(ids []string, weights []float64) (string, error) {
	if len(ids) == 0 {
		return "", nerrors.WrapWithContext(nerrors.ErrMissingRequired, "nothing to pick from")
	}
	if len(ids) != len(weights) {
		return "", &nerrors.ValidationError{
			Field:   "weights",
			Value:   len(weights),
			Message: "length must match ids",
		}
	}
	if len(ids) == 1 {
		return ids[0], nil
	}

	idx := s.pickIndex(weights)
	return ids[idx], nil
}

// pickIndex walks the cumulative weight distribution. The strict < comparison
// means a draw landing exactly on a boundary belongs to the earlier entry.
func (s *Selector) pickIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return s.rng.Intn(len(weights))
	}

	draw := s.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if draw < cum {
			return i
		}
	}
	// Floating point drift: the draw fell past the last boundary.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}
