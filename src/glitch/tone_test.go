package glitch

import (
	"math/rand"
	"strings"
	"testing"
)

func TestModulateNoOpBelowThreshold(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(1)))
	const text = "Maybe you should rest. You could try again tomorrow."

	for _, state := range []string{ToneCommanding, TonePlayful, ToneMelancholic, ToneGlitching} {
		if got := m.Modulate(text, state, 0.2); got != text {
			t.Errorf("state %s altered text below threshold: %q", state, got)
		}
	}
}

func TestModulateUnknownStatePassesThrough(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(1)))
	const text = "Nothing to change here."

	if got := m.Modulate(text, "serene", 0.9); got != text {
		t.Errorf("unknown state altered text: %q", got)
	}
}

func TestCommandingHighIntensity(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(1)))

	got := m.Modulate("Maybe you should rest, and you could try later.", ToneCommanding, 0.8)

	if strings.Contains(strings.ToLower(got), "maybe") {
		t.Errorf("commanding tone kept hedging: %q", got)
	}
	if strings.Contains(strings.ToLower(got), "you should") || strings.Contains(strings.ToLower(got), "you could") {
		t.Errorf("commanding tone kept softened directive: %q", got)
	}
	if !strings.Contains(got, "you will") {
		t.Errorf("commanding tone missing directive rewrite: %q", got)
	}
}

func TestCommandingModerateIntensityUnchanged(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(1)))
	const text = "Maybe you should rest."

	if got := m.Modulate(text, ToneCommanding, 0.5); got != text {
		t.Errorf("commanding tone rewrote below 0.7: %q", got)
	}
}

func TestMelancholicTrailsOff(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(2)))
	const text = "The night is long."

	var trailed bool
	for i := 0; i < 100; i++ {
		if got := m.Modulate(text, ToneMelancholic, 0.8); strings.HasSuffix(got, "...") {
			trailed = true
			break
		}
	}
	if !trailed {
		t.Error("melancholic tone never trailed off in 100 passes")
	}

	// Already-trailing text is left alone.
	const trailing = "It fades..."
	for i := 0; i < 50; i++ {
		if got := m.Modulate(trailing, ToneMelancholic, 0.8); got != trailing {
			t.Fatalf("melancholic tone re-trailed text: %q", got)
		}
	}
}

func TestGlitchingInsertsStatic(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(3)))
	const text = "the signal carries more than it was ever designed to hold tonight"

	var sawMarker bool
	for i := 0; i < 200; i++ {
		got := m.Modulate(text, ToneGlitching, 0.9)
		for _, marker := range staticMarkers {
			if strings.Contains(got, marker) {
				sawMarker = true
			}
		}
	}
	if !sawMarker {
		t.Error("glitching tone never inserted a static marker in 200 passes")
	}
}

func TestGlitchingLowIntensityUnchanged(t *testing.T) {
	t.Parallel()

	m := NewToneModulator(rand.New(rand.NewSource(3)))
	const text = "steady signal"

	if got := m.Modulate(text, ToneGlitching, 0.4); got != text {
		t.Errorf("glitching tone altered text below 0.5: %q", got)
	}
}
