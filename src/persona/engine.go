package persona

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"nocturne/src/glitch"
	"nocturne/src/nerrors"
	"nocturne/src/safety"
	"nocturne/src/scenario"
)

// Engine maps discrete contextual inputs (familiarity tier, conversation
// context, time of day, user text) onto a response template and a glitch
// intensity. It holds no per-user state; sessions belong to the host and are
// passed in as plain values, so one Engine can serve any number of
// conversations concurrently.
type Engine struct {
	cfg      *Config
	glitch   *glitch.Engine
	tone     *glitch.ToneModulator
	selector *scenario.Selector
	consent  *safety.Detector
	crisis   *safety.CrisisDetector
	rng      *rand.Rand
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRand sets the random source for template choice, glitch effects and
// scenario selection. Tests pass a seeded source for reproducible output.
// The engine serializes access to it, so callers need not.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = r }
}

// lockedSource serializes a rand.Source. math/rand's Rand is not safe for
// concurrent use, and the daemon calls one engine from many goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// NewEngine creates an engine over a loaded persona configuration.
func NewEngine(cfg *Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     cfg,
		consent: safety.NewDetector(),
		crisis:  safety.NewCrisisDetector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	var src rand.Source = rand.NewSource(time.Now().UnixNano())
	if e.rng != nil {
		src = e.rng
	}
	e.rng = rand.New(&lockedSource{src: src})
	e.glitch = glitch.NewEngine(glitch.WithRand(e.rng))
	e.tone = glitch.NewToneModulator(e.rng)
	e.selector = scenario.NewSelector(cfg.Scenarios, scenario.WithRand(e.rng))
	return e
}

// Config returns the persona configuration backing this engine.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Turn carries the inputs for one conversational exchange.
type Turn struct {
	Input   string
	Tier    Tier
	Context Context
	State   EmotionalState
	Mode    OperationalMode
}

// Reply is the engine's output for a greeting or a chat turn.
type Reply struct {
	TemplateID string
	Text       string
	Intensity  float64
	Signal     safety.Signal
	Crisis     bool
}

// ComputeIntensity returns base(tier) * multiplier(context) clamped to [0,1].
// This is the whole invariant: no context override or state adjustment leaks
// into this value.
func (e *Engine) ComputeIntensity(tier Tier, ctx Context) (float64, error) {
	base, err := e.cfg.BaseIntensity(tier)
	if err != nil {
		return 0, err
	}
	mult, err := e.cfg.Multiplier(ctx)
	if err != nil {
		return 0, err
	}
	return clamp01(base * mult), nil
}

// SelectGreeting picks the greeting template for a tier and hour of day.
// The nocturnal window wins over tier; a new tier gets the first-encounter
// template; everyone else gets the returning one. No randomness.
func (e *Engine) SelectGreeting(tier Tier, hour int) (string, error) {
	if _, err := ParseTier(string(tier)); err != nil {
		return "", err
	}
	if hour < 0 || hour > 23 {
		return "", &nerrors.ValidationError{Field: "hour", Value: hour, Message: "must be 0-23"}
	}

	if hour >= e.cfg.Nocturnal.StartHour && hour < e.cfg.Nocturnal.EndHour {
		return GreetingMidnight, nil
	}
	if tier == TierNew {
		return GreetingFirstEncounter, nil
	}
	return GreetingReturning, nil
}

// Greet renders the greeting for a tier, hour and context, with the glitch
// pass applied at the computed intensity.
func (e *Engine) Greet(tier Tier, ctx Context, hour int) (*Reply, error) {
	id, err := e.SelectGreeting(tier, hour)
	if err != nil {
		return nil, err
	}
	intensity, err := e.renderIntensity(tier, ctx)
	if err != nil {
		return nil, err
	}

	text, ok := e.cfg.Greetings[id]
	if !ok || text == "" {
		return nil, nerrors.WrapWithContext(nerrors.ErrTemplateMissing, "greeting %q", id)
	}

	return &Reply{
		TemplateID: id,
		Text:       e.glitch.Apply(text, intensity),
		Intensity:  intensity,
	}, nil
}

// Respond generates a reply for one chat turn: consent routing first, then
// context and keyword template selection, tone modulation, and the glitch
// pass. Safeword and crisis turns skip tone modulation and the glitch
// aesthetic entirely.
func (e *Engine) Respond(t Turn) (*Reply, error) {
	if _, err := ParseTier(string(t.Tier)); err != nil {
		return nil, err
	}
	if _, err := ParseContext(string(t.Context)); err != nil {
		return nil, err
	}
	state := t.State
	if state == "" {
		state = StateSerene
	}

	signal, _ := e.consent.Detect(t.Input)
	inCrisis := t.Context == ContextCrisis || e.crisis.Detect(t.Input)

	group := e.route(signal, inCrisis, t)
	text, err := e.pick(group)
	if err != nil {
		return nil, err
	}

	intensity, err := e.renderIntensity(t.Tier, t.Context)
	if err != nil {
		return nil, err
	}

	plainReply := signal == safety.SignalHardNo || inCrisis
	if !plainReply {
		if state == StateGlitching && e.rng.Float64() < 0.35 {
			if fragment, err := e.pick("glitch"); err == nil {
				text = text + " " + fragment
			}
		}
		text = e.tone.Modulate(text, string(state), intensity)
		text = e.glitch.Apply(text, intensity)
	}

	return &Reply{
		TemplateID: group,
		Text:       text,
		Intensity:  intensity,
		Signal:     signal,
		Crisis:     inCrisis,
	}, nil
}

// ApplyGlitch applies the glitch aesthetic to arbitrary text.
func (e *Engine) ApplyGlitch(text string, intensity float64) string {
	return e.glitch.Apply(text, intensity)
}

// SelectScenario performs weighted random selection over the persona's
// scenario table.
func (e *Engine) SelectScenario(prefs scenario.Preferences) (scenario.Scenario, error) {
	return e.selector.Select(prefs)
}

// Scenarios returns the persona's scenario table in configuration order.
func (e *Engine) Scenarios() []scenario.Scenario {
	return e.selector.Scenarios()
}

// DialogueExamples returns example lines for an emotional layer
// (surface, middle, deep).
func (e *Engine) DialogueExamples(layer string) []string {
	return e.cfg.Layers[layer]
}

// GlitchSamples returns pre-written glitch samples for a band
// (subtle, moderate, intense).
func (e *Engine) GlitchSamples(band string) []string {
	return e.cfg.Samples[band]
}

// renderIntensity is the intensity actually used when rendering output:
// the computed value, unless the context configures a fixed override
// (crisis damping).
func (e *Engine) renderIntensity(tier Tier, ctx Context) (float64, error) {
	if override, ok := e.cfg.Override(ctx); ok {
		return clamp01(override), nil
	}
	return e.ComputeIntensity(tier, ctx)
}

// route maps the consent signal, crisis flag, context and input keywords to
// a dialogue template group. Refusals always win.
func (e *Engine) route(signal safety.Signal, inCrisis bool, t Turn) string {
	if signal == safety.SignalHardNo {
		return "safeword"
	}
	if inCrisis {
		return "crisis"
	}
	switch signal {
	case safety.SignalSoftNo:
		return "hesitation"
	case safety.SignalEnthusiastic, safety.SignalAffirmative:
		return "affirmation"
	}
	if t.Context == ContextCreative {
		return "creative"
	}
	if t.Mode == ModeNurturing {
		return "nurture"
	}

	lower := strings.ToLower(t.Input)
	for _, kw := range []string{"why", "what is", "philosophy", "meaning", "exist"} {
		if strings.Contains(lower, kw) {
			return "philosophical"
		}
	}

	return "greeting"
}

// pick chooses one line at random from a dialogue template group.
func (e *Engine) pick(group string) (string, error) {
	lines := e.cfg.Dialogue[group]
	if len(lines) == 0 {
		return "", nerrors.WrapWithContext(nerrors.ErrTemplateMissing, "dialogue group %q", group)
	}
	return lines[e.rng.Intn(len(lines))], nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
