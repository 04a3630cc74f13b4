package session

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"nocturne/src/persona"
)

// Session is the mutable per-conversation state: familiarity tier,
// conversation context, emotional state, mode, and the interaction counter
// that drives tier progression. One session has one logical owner; the
// counter is atomic so a host that shares a session with a background
// recorder still counts correctly.
type Session struct {
	ID           string                  `json:"id"`
	Persona      string                  `json:"persona"`
	Tier         persona.Tier            `json:"tier"`
	Context      persona.Context         `json:"context"`
	State        persona.EmotionalState  `json:"state"`
	Mode         persona.OperationalMode `json:"mode"`
	Interactions *atomic.Int64           `json:"interactions"`
	LastScenario string                  `json:"last_scenario,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
	LastSeen     time.Time               `json:"last_seen"`
}

// Thresholds holds the interaction counts at which the familiarity tier
// advances.
type Thresholds struct {
	EstablishedAfter int
	IntimateAfter    int
}

// DefaultThresholds mirrors the embedded persona defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{EstablishedAfter: 5, IntimateAfter: 15}
}

// New creates a fresh session. An empty id gets a generated UUID.
func New(id, personaID string, now time.Time) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:           id,
		Persona:      personaID,
		Tier:         persona.TierNew,
		Context:      persona.ContextCasual,
		State:        persona.StateSerene,
		Mode:         persona.ModeStandard,
		Interactions: atomic.NewInt64(0),
		StartedAt:    now,
		LastSeen:     now,
	}
}

// Touch records one interaction: the counter increments and the tier
// advances past any crossed threshold. Progression is monotonic; a tier
// never regresses, no matter what the counter says.
func (s *Session) Touch(now time.Time, th Thresholds) {
	if s.Interactions == nil {
		s.Interactions = atomic.NewInt64(0)
	}
	count := s.Interactions.Inc()
	s.LastSeen = now

	switch {
	case count >= int64(th.IntimateAfter):
		s.Tier = persona.TierIntimate
	case count >= int64(th.EstablishedAfter) && s.Tier == persona.TierNew:
		s.Tier = persona.TierEstablished
	}
}

// Count returns the current interaction count.
func (s *Session) Count() int64 {
	if s.Interactions == nil {
		return 0
	}
	return s.Interactions.Load()
}
