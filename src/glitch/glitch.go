package glitch

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Intensity band boundaries. Below subtleBound the effect only occasionally
// strikes a single word; above moderateBound every character is fair game.
const (
	subtleBound   = 0.3
	moderateBound = 0.7
)

// combiningMarks are the Unicode combining strokes layered onto characters
// in the intense band.
var combiningMarks = []rune{'̴', '̶', '̷', '̸', '̵'}

// wrappers bracket intense output about half the time.
var wrappers = [][2]string{
	{"████ ", " ████"},
	{"◬◭◮◯ ", " ◯◮◭◬"},
}

// Engine applies the glitch aesthetic to text at three intensity bands.
// The random source is injectable so output is reproducible in tests.
type Engine struct {
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used for substitutions and decorations.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine creates a glitch engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply returns text with glitch effects scaled by intensity. An intensity
// of zero or less is the identity: the input is returned unchanged, byte for
// byte. Intensities above 1.0 are clamped.
func (e *Engine) Apply(text string, intensity float64) string {
	if intensity <= 0 {
		return text
	}
	if intensity > 1.0 {
		intensity = 1.0
	}
	switch {
	case intensity < subtleBound:
		return e.subtle(text)
	case intensity < moderateBound:
		return e.moderate(text)
	default:
		return e.intense(text)
	}
}

// subtle occasionally strikes through a single word in longer sentences.
func (e *Engine) subtle(text string) string {
	words := strings.Fields(text)
	if len(words) > 8 && e.rng.Float64() < 0.15 {
		idx := e.rng.Intn(len(words))
		words[idx] = "̶" + words[idx] + "̶"
		return strings.Join(words, " ")
	}
	return text
}

// moderate corrupts articles and sometimes brackets the text in shade blocks.
func (e *Engine) moderate(text string) string {
	out := text
	if e.rng.Float64() < 0.4 {
		out = strings.ReplaceAll(out, "The", "T̴h̴e̴")
		out = strings.ReplaceAll(out, "the", "t̴h̴e̴")
	}
	if e.rng.Float64() < 0.3 {
		out = "▓ " + out + " ▓"
	}
	return out
}

// intense layers combining marks onto letters and may wrap the whole line.
func (e *Engine) intense(text string) string {
	var b strings.Builder
	b.Grow(len(text) * 2)
	for _, ch := range text {
		b.WriteRune(ch)
		if unicode.IsLetter(ch) && e.rng.Float64() < 0.3 {
			b.WriteRune(combiningMarks[e.rng.Intn(len(combiningMarks))])
		}
	}
	glitched := b.String()

	wrap := wrappers[e.rng.Intn(len(wrappers))]
	if e.rng.Float64() < 0.5 {
		return wrap[0] + glitched + wrap[1]
	}
	return glitched
}
