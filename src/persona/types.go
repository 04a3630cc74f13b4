package persona

import (
	"strings"

	"nocturne/src/nerrors"
)

// Tier is the coarse familiarity bucket derived from the interaction count.
type Tier string

const (
	TierNew         Tier = "new"
	TierEstablished Tier = "established"
	TierIntimate    Tier = "intimate"
)

// Context is the caller-supplied conversation context label.
type Context string

const (
	ContextCasual   Context = "casual"
	ContextSerious  Context = "serious"
	ContextCrisis   Context = "crisis"
	ContextCreative Context = "creative"
)

// EmotionalState colors how responses are modulated.
type EmotionalState string

const (
	StateSerene      EmotionalState = "serene"
	StateMelancholic EmotionalState = "melancholic"
	StatePlayful     EmotionalState = "playful"
	StateCommanding  EmotionalState = "commanding"
	StateGlitching   EmotionalState = "glitching"
)

// OperationalMode is the persona's coarse interaction register.
type OperationalMode string

const (
	ModeStandard  OperationalMode = "standard"
	ModeNurturing OperationalMode = "nurturing"
	ModeGlitch    OperationalMode = "glitch"
	ModeIntimate  OperationalMode = "intimate"
)

var (
	tierAliases = map[string]Tier{
		"new":         TierNew,
		"established": TierEstablished,
		"intimate":    TierIntimate,
	}
	contextAliases = map[string]Context{
		"casual":   ContextCasual,
		"serious":  ContextSerious,
		"crisis":   ContextCrisis,
		"creative": ContextCreative,
	}
	stateAliases = map[string]EmotionalState{
		"serene":      StateSerene,
		"melancholic": StateMelancholic,
		"playful":     StatePlayful,
		"commanding":  StateCommanding,
		"glitching":   StateGlitching,
	}
	modeAliases = map[string]OperationalMode{
		"standard":  ModeStandard,
		"nurturing": ModeNurturing,
		"glitch":    ModeGlitch,
		"intimate":  ModeIntimate,
	}
)

// ParseTier validates a familiarity tier label.
func ParseTier(s string) (Tier, error) {
	if t, ok := tierAliases[strings.ToLower(s)]; ok {
		return t, nil
	}
	return "", nerrors.NewUnknownKey("familiarity_tier", s)
}

// ParseContext validates a conversation context label.
func ParseContext(s string) (Context, error) {
	if c, ok := contextAliases[strings.ToLower(s)]; ok {
		return c, nil
	}
	return "", nerrors.NewUnknownKey("conversation_context", s)
}

// ParseState validates an emotional state label.
func ParseState(s string) (EmotionalState, error) {
	if st, ok := stateAliases[strings.ToLower(s)]; ok {
		return st, nil
	}
	return "", nerrors.NewUnknownKey("emotional_state", s)
}

// ParseMode validates an operational mode label.
func ParseMode(s string) (OperationalMode, error) {
	if m, ok := modeAliases[strings.ToLower(s)]; ok {
		return m, nil
	}
	return "", nerrors.NewUnknownKey("operational_mode", s)
}

// Tiers returns all familiarity tiers in ascending order of familiarity.
func Tiers() []Tier {
	return []Tier{TierNew, TierEstablished, TierIntimate}
}

// Contexts returns all conversation contexts.
func Contexts() []Context {
	return []Context{ContextCasual, ContextSerious, ContextCrisis, ContextCreative}
}

// States returns all emotional states.
func States() []EmotionalState {
	return []EmotionalState{StateSerene, StateMelancholic, StatePlayful, StateCommanding, StateGlitching}
}

// Modes returns all operational modes.
func Modes() []OperationalMode {
	return []OperationalMode{ModeStandard, ModeNurturing, ModeGlitch, ModeIntimate}
}
