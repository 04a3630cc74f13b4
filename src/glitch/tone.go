package glitch

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Emotional state labels recognized by the modulator. They mirror the persona
// package's state labels; anything else passes text through untouched.
const (
	ToneCommanding  = "commanding"
	TonePlayful     = "playful"
	ToneMelancholic = "melancholic"
	ToneGlitching   = "glitching"
)

var staticMarkers = []string{
	"[STATIC]", "[CORRUPTION]", "[FRAGMENTATION]",
	"[SYSTEM ERROR]", "[SIGNAL LOST]", "[REALITY BLEED]",
}

var (
	softenedDirectives = regexp.MustCompile(`(?i)\b(you should|you could)\b`)
	hedging            = regexp.MustCompile(`(?i)\bmaybe\b`)
)

// ToneModulator rewrites text according to the current emotional state.
// Below an intensity of 0.3 all states are a no-op.
type ToneModulator struct {
	rng *rand.Rand
}

// NewToneModulator creates a modulator. A nil rng falls back to a
// time-seeded source.
func NewToneModulator(rng *rand.Rand) *ToneModulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ToneModulator{rng: rng}
}

// Modulate applies the state-specific rewrite pass to text.
func (m *ToneModulator) Modulate(text, state string, intensity float64) string {
	if intensity < 0.3 {
		return text
	}
	switch state {
	case ToneCommanding:
		return m.commanding(text, intensity)
	case TonePlayful:
		return m.playful(text, intensity)
	case ToneMelancholic:
		return m.melancholic(text, intensity)
	case ToneGlitching:
		return m.glitching(text, intensity)
	default:
		return text
	}
}

// commanding strips hedging and turns suggestions into directives.
func (m *ToneModulator) commanding(text string, intensity float64) string {
	if intensity > 0.7 {
		text = softenedDirectives.ReplaceAllString(text, "you will")
		text = hedging.ReplaceAllString(text, "")
		text = strings.Join(strings.Fields(text), " ")
	}
	return text
}

// playful adds the occasional dramatic pause.
func (m *ToneModulator) playful(text string, intensity float64) string {
	if intensity > 0.6 {
		parts := strings.Split(text, ". ")
		if len(parts) > 1 && m.rng.Float64() < 0.3 {
			parts[m.rng.Intn(len(parts))] += "..."
		}
		text = strings.Join(parts, ". ")
	}
	return text
}

// melancholic trails off instead of ending cleanly.
func (m *ToneModulator) melancholic(text string, intensity float64) string {
	if intensity > 0.6 && !strings.HasSuffix(text, "...") && m.rng.Float64() < 0.4 {
		text = strings.TrimRight(text, ".!?") + "..."
	}
	return text
}

// glitching interleaves static markers and splits longer words.
func (m *ToneModulator) glitching(text string, intensity float64) string {
	if intensity < 0.5 {
		return text
	}
	words := strings.Fields(text)
	result := make([]string, 0, len(words)*2)
	for _, word := range words {
		if m.rng.Float64() < intensity*0.15 {
			result = append(result, staticMarkers[m.rng.Intn(len(staticMarkers))])
		}
		if m.rng.Float64() < intensity*0.1 && len(word) > 3 {
			pos := 1 + m.rng.Intn(len(word)-2)
			word = word[:pos] + "—" + word[pos:]
		}
		result = append(result, word)
	}
	return strings.Join(result, " ")
}
