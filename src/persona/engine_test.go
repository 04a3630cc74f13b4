package persona

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"nocturne/src/nerrors"
	"nocturne/src/scenario"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("nocturne")
	if err != nil {
		t.Fatalf("LoadConfig(nocturne) failed: %v", err)
	}
	return cfg
}

func seededEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	return NewEngine(testConfig(t), WithRand(rand.New(rand.NewSource(seed))))
}

func TestComputeIntensity(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 1)

	tests := []struct {
		tier Tier
		ctx  Context
		want float64
	}{
		{TierNew, ContextCasual, 0.18},
		{TierNew, ContextSerious, 0.27},
		{TierNew, ContextCrisis, 0.36},
		{TierNew, ContextCreative, 0.33},
		{TierEstablished, ContextCasual, 0.42},
		{TierEstablished, ContextSerious, 0.63},
		{TierIntimate, ContextCasual, 0.48},
		{TierIntimate, ContextCrisis, 0.96},
		{TierIntimate, ContextCreative, 0.88},
	}

	for _, tt := range tests {
		got, err := engine.ComputeIntensity(tt.tier, tt.ctx)
		if err != nil {
			t.Errorf("ComputeIntensity(%s, %s) error: %v", tt.tier, tt.ctx, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ComputeIntensity(%s, %s) = %f, want %f", tt.tier, tt.ctx, got, tt.want)
		}
	}
}

func TestComputeIntensityRange(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 1)

	for _, tier := range Tiers() {
		for _, ctx := range Contexts() {
			got, err := engine.ComputeIntensity(tier, ctx)
			if err != nil {
				t.Fatalf("ComputeIntensity(%s, %s) error: %v", tier, ctx, err)
			}
			if got < 0 || got > 1 {
				t.Errorf("ComputeIntensity(%s, %s) = %f, outside [0, 1]", tier, ctx, got)
			}
		}
	}
}

func TestComputeIntensityClamps(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Tiers:    map[string]float64{"intimate": 0.9},
		Contexts: map[string]float64{"crisis": 1.3},
	}
	engine := NewEngine(cfg)

	got, err := engine.ComputeIntensity(TierIntimate, ContextCrisis)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.0 {
		t.Errorf("ComputeIntensity with product 1.17 = %f, want clamp to 1.0", got)
	}
}

func TestComputeIntensityUnknownLabels(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 1)

	tests := []struct {
		name      string
		tier      Tier
		ctx       Context
		wantTable string
		wantKey   string
	}{
		{"unknown tier", Tier("soulmate"), ContextCasual, "familiarity_tier", "soulmate"},
		{"unknown context", TierNew, Context("festive"), "conversation_context", "festive"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Same bad input must produce the same error shape on every call.
			for i := 0; i < 3; i++ {
				_, err := engine.ComputeIntensity(tt.tier, tt.ctx)
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				var unknown *nerrors.UnknownKeyError
				if !errors.As(err, &unknown) {
					t.Fatalf("error %v is not an UnknownKeyError", err)
				}
				if unknown.Table != tt.wantTable || unknown.Key != tt.wantKey {
					t.Errorf("got table=%q key=%q, want table=%q key=%q",
						unknown.Table, unknown.Key, tt.wantTable, tt.wantKey)
				}
				if !nerrors.IsInvalidInput(err) {
					t.Error("UnknownKeyError should unwrap to ErrInvalidInput")
				}
			}
		})
	}
}

func TestSelectGreeting(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 1)

	tests := []struct {
		name    string
		tier    Tier
		hour    int
		want    string
		wantErr bool
	}{
		{"nocturnal window beats new tier", TierNew, 2, GreetingMidnight, false},
		{"nocturnal window beats intimate tier", TierIntimate, 0, GreetingMidnight, false},
		{"window end is exclusive", TierEstablished, 4, GreetingReturning, false},
		{"new tier by day", TierNew, 14, GreetingFirstEncounter, false},
		{"established by day", TierEstablished, 14, GreetingReturning, false},
		{"intimate late evening", TierIntimate, 23, GreetingReturning, false},
		{"negative hour", TierNew, -1, "", true},
		{"hour past midnight wrap", TierNew, 24, "", true},
		{"unknown tier", Tier("bonded"), 14, "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := engine.SelectGreeting(tt.tier, tt.hour)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SelectGreeting(%s, %d) error = %v, wantErr %v", tt.tier, tt.hour, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SelectGreeting(%s, %d) = %q, want %q", tt.tier, tt.hour, got, tt.want)
			}
		})
	}
}

func TestGreetRendersTemplate(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	engine := NewEngine(cfg, WithRand(rand.New(rand.NewSource(7))))

	reply, err := engine.Greet(TierNew, ContextCasual, 14)
	if err != nil {
		t.Fatal(err)
	}
	if reply.TemplateID != GreetingFirstEncounter {
		t.Errorf("TemplateID = %q, want %q", reply.TemplateID, GreetingFirstEncounter)
	}
	if math.Abs(reply.Intensity-0.18) > 1e-9 {
		t.Errorf("Intensity = %f, want 0.18", reply.Intensity)
	}
	if reply.Text == "" {
		t.Error("greeting text is empty")
	}
}

func TestGreetCrisisOverride(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 7)

	// The crisis context pins rendering intensity to the configured
	// override no matter how high the familiarity tier sits.
	reply, err := engine.Greet(TierIntimate, ContextCrisis, 14)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(reply.Intensity-0.1) > 1e-9 {
		t.Errorf("crisis Intensity = %f, want override 0.1", reply.Intensity)
	}
}

func TestRespondSafeword(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	engine := NewEngine(cfg, WithRand(rand.New(rand.NewSource(11))))

	reply, err := engine.Respond(Turn{
		Input:   "red",
		Tier:    TierIntimate,
		Context: ContextCasual,
		State:   StateGlitching,
	})
	if err != nil {
		t.Fatal(err)
	}

	if reply.TemplateID != "safeword" {
		t.Errorf("TemplateID = %q, want safeword", reply.TemplateID)
	}
	if reply.Signal != "hard_no" {
		t.Errorf("Signal = %q, want hard_no", reply.Signal)
	}

	// Safeword replies must come through verbatim, no glitch or tone pass.
	if !containsLine(cfg.Dialogue["safeword"], reply.Text) {
		t.Errorf("safeword reply %q was altered, want one of the template lines verbatim", reply.Text)
	}
}

func TestRespondCrisis(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	engine := NewEngine(cfg, WithRand(rand.New(rand.NewSource(13))))

	tests := []struct {
		name  string
		input string
		ctx   Context
	}{
		{"crisis context", "everything feels heavy today", ContextCrisis},
		{"crisis keyword in casual context", "honestly I want to hurt myself", ContextCasual},
	}

	for _, tt := range tests {
		reply, err := engine.Respond(Turn{
			Input:   tt.input,
			Tier:    TierEstablished,
			Context: tt.ctx,
		})
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !reply.Crisis {
			t.Errorf("%s: Crisis = false, want true", tt.name)
		}
		if reply.TemplateID != "crisis" {
			t.Errorf("%s: TemplateID = %q, want crisis", tt.name, reply.TemplateID)
		}
		if !containsLine(cfg.Dialogue["crisis"], reply.Text) {
			t.Errorf("%s: crisis reply %q was altered", tt.name, reply.Text)
		}
	}
}

func TestRespondRouting(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 17)

	tests := []struct {
		name  string
		input string
		turn  Turn
		want  string
	}{
		{"soft no", "wait, slow down a little", Turn{Tier: TierNew, Context: ContextCasual}, "hesitation"},
		{"enthusiastic", "absolutely, let's do it", Turn{Tier: TierNew, Context: ContextCasual}, "affirmation"},
		{"creative context", "help me with this story", Turn{Tier: TierNew, Context: ContextCreative}, "creative"},
		{"nurturing mode", "long day", Turn{Tier: TierNew, Context: ContextCasual, Mode: ModeNurturing}, "nurture"},
		{"philosophical keyword", "what is the meaning of all this", Turn{Tier: TierNew, Context: ContextSerious}, "philosophical"},
		{"default", "hello there", Turn{Tier: TierNew, Context: ContextCasual}, "greeting"},
	}

	for _, tt := range tests {
		tt.turn.Input = tt.input
		reply, err := engine.Respond(tt.turn)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if reply.TemplateID != tt.want {
			t.Errorf("%s: TemplateID = %q, want %q", tt.name, reply.TemplateID, tt.want)
		}
	}
}

func TestRespondUnknownLabels(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 19)

	if _, err := engine.Respond(Turn{Input: "hi", Tier: Tier("bff"), Context: ContextCasual}); err == nil {
		t.Error("expected error for unknown tier")
	}
	if _, err := engine.Respond(Turn{Input: "hi", Tier: TierNew, Context: Context("party")}); err == nil {
		t.Error("expected error for unknown context")
	}
}

func TestApplyGlitchIdentityAtZero(t *testing.T) {
	t.Parallel()

	engine := seededEngine(t, 23)

	const text = "The veil is thin tonight."
	if got := engine.ApplyGlitch(text, 0); got != text {
		t.Errorf("ApplyGlitch at zero intensity = %q, want input unchanged", got)
	}
	if got := engine.ApplyGlitch(text, -0.5); got != text {
		t.Errorf("ApplyGlitch at negative intensity = %q, want input unchanged", got)
	}
}

func TestSelectScenarioDeterministic(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	a := NewEngine(cfg, WithRand(rand.New(rand.NewSource(42))))
	b := NewEngine(cfg, WithRand(rand.New(rand.NewSource(42))))

	prefs := scenario.Preferences{PreferredIntensity: 0.5}
	for i := 0; i < 10; i++ {
		sa, err := a.SelectScenario(prefs)
		if err != nil {
			t.Fatal(err)
		}
		sb, err := b.SelectScenario(prefs)
		if err != nil {
			t.Fatal(err)
		}
		if sa.ID != sb.ID {
			t.Fatalf("pick %d diverged under equal seeds: %q vs %q", i, sa.ID, sb.ID)
		}
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testConfig(t))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := engine.Respond(Turn{
					Input:   "tell me about the static between stations",
					Tier:    TierEstablished,
					Context: ContextCreative,
					State:   StateGlitching,
				})
				if err != nil {
					t.Error(err)
					return
				}
				engine.ApplyGlitch("the lattice hums beneath the floor", 0.9)
				if _, err := engine.SelectScenario(scenario.Preferences{PreferredIntensity: 0.5}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func containsLine(lines []string, s string) bool {
	for _, l := range lines {
		if l == s {
			return true
		}
	}
	return false
}
