package safety

import (
	"regexp"
	"strings"
)

var crisisKeywords = []string{
	"hurt myself", "harm myself", "kill myself", "don't want to be here",
	"end it all", "can't go on", "give up on everything", "hopeless",
	"panic attack", "can't breathe",
}

var crisisWords = []*regexp.Regexp{
	regexp.MustCompile(`\bsuicidal?\b`),
	regexp.MustCompile(`\bself-harm\b`),
}

// CrisisDetector flags messages that indicate acute distress so the engine
// can route to crisis templates and damp the glitch aesthetic.
type CrisisDetector struct{}

// NewCrisisDetector creates a crisis detector.
func NewCrisisDetector() *CrisisDetector {
	return &CrisisDetector{}
}

// Detect reports whether text contains a distress indicator.
func (c *CrisisDetector) Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range crisisKeywords {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, re := range crisisWords {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
