package safety

import (
	"regexp"
	"strings"
)

// Signal classifies the consent content of a user message.
type Signal string

const (
	SignalHardNo       Signal = "hard_no"
	SignalSoftNo       Signal = "soft_no"
	SignalAffirmative  Signal = "affirmative"
	SignalEnthusiastic Signal = "enthusiastic"
	SignalUnclear      Signal = "unclear"
)

// matcher is either a compiled word-boundary pattern (single words) or a
// plain substring (multi-word phrases).
type matcher struct {
	pattern *regexp.Regexp
	phrase  string
}

func (m matcher) match(lower string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(lower)
	}
	return strings.Contains(lower, m.phrase)
}

// Detection order matters: a hard stop must win over anything else the
// message happens to contain.
var signalOrder = []Signal{SignalHardNo, SignalSoftNo, SignalEnthusiastic, SignalAffirmative}

var defaultKeywords = map[Signal][]string{
	SignalHardNo:       {"no", "stop", "safeword", "red", "end", "don't"},
	SignalSoftNo:       {"maybe not", "i'm not sure", "slow down", "wait", "pause", "hold on"},
	SignalAffirmative:  {"yes", "i want", "please", "continue", "more", "keep going"},
	SignalEnthusiastic: {"absolutely", "definitely", "yes please"},
}

// Detector classifies consent signals in user input via keyword tables.
// Single-word keywords match on word boundaries so "north" never trips "no".
type Detector struct {
	matchers map[Signal][]matcher
}

// NewDetector builds a detector from the default keyword tables.
func NewDetector() *Detector {
	return NewDetectorWithKeywords(defaultKeywords)
}

// NewDetectorWithKeywords builds a detector from caller-supplied tables.
func NewDetectorWithKeywords(keywords map[Signal][]string) *Detector {
	d := &Detector{matchers: make(map[Signal][]matcher, len(keywords))}
	for signal, phrases := range keywords {
		for _, phrase := range phrases {
			if strings.Contains(phrase, " ") {
				d.matchers[signal] = append(d.matchers[signal], matcher{phrase: phrase})
			} else {
				re := regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
				d.matchers[signal] = append(d.matchers[signal], matcher{pattern: re})
			}
		}
	}
	return d
}

// Detect returns the strongest consent signal present in text along with a
// confidence score. Unmatched input is SignalUnclear at low confidence.
func (d *Detector) Detect(text string) (Signal, float64) {
	lower := strings.ToLower(text)
	for _, signal := range signalOrder {
		for _, m := range d.matchers[signal] {
			if m.match(lower) {
				if signal == SignalHardNo || signal == SignalEnthusiastic {
					return signal, 0.95
				}
				return signal, 0.85
			}
		}
	}
	return SignalUnclear, 0.3
}

// ShouldProceed reports whether the interaction may continue at the current
// register. Both refusal signals halt escalation.
func ShouldProceed(s Signal) bool {
	return s != SignalHardNo && s != SignalSoftNo
}
