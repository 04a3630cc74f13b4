package cmd

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"nocturne/src/glitch"
	"nocturne/src/persona"
)

var demoSeed int64

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show the persona's voice across tiers, contexts and glitch bands",
	Long: `Show the persona's voice across tiers, contexts and glitch bands.

Prints the intensity matrix for every tier/context pair, the greeting
selected at representative hours, sample lines for each emotional layer,
the glitch effect at each band, the tone of each emotional state, and
the persona's traits and scenario pool.`,
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadPersona()
	if err != nil {
		return err
	}

	var opts []persona.EngineOption
	if demoSeed != 0 {
		opts = append(opts, persona.WithRand(rand.New(rand.NewSource(demoSeed))))
	}
	engine := persona.NewEngine(cfg, opts...)

	header := lipgloss.NewStyle().Bold(true)
	if cfg.Display.Color != "" {
		header = header.Foreground(lipgloss.Color(cfg.Display.Color))
	}

	fmt.Println(header.Render(fmt.Sprintf("%s v%s", cfg.Metadata.Name, cfg.Metadata.Version)))
	if cfg.Metadata.Description != "" {
		fmt.Println(cfg.Metadata.Description)
	}
	fmt.Println()

	fmt.Println(header.Render("Intensity matrix"))
	for _, tier := range persona.Tiers() {
		for _, ctx := range persona.Contexts() {
			intensity, err := engine.ComputeIntensity(tier, ctx)
			if err != nil {
				return err
			}
			fmt.Printf("  %-12s x %-9s = %.2f\n", tier, ctx, intensity)
		}
	}
	fmt.Println()

	fmt.Println(header.Render("Greetings"))
	for _, probe := range []struct {
		tier persona.Tier
		hour int
	}{
		{persona.TierNew, 2},
		{persona.TierNew, 14},
		{persona.TierEstablished, 14},
		{persona.TierIntimate, 23},
	} {
		id, err := engine.SelectGreeting(probe.tier, probe.hour)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s @ %02d:00 -> %-16s %q\n", probe.tier, probe.hour, id, cfg.Greetings[id])
	}
	fmt.Println()

	fmt.Println(header.Render("Emotional layers"))
	for _, layer := range []string{"surface", "middle", "deep"} {
		for _, line := range engine.DialogueExamples(layer) {
			fmt.Printf("  [%s] %s\n", layer, line)
		}
	}
	fmt.Println()

	fmt.Println(header.Render("Glitch bands"))
	sample := "The signal remembers what the silence tried to erase."
	for _, band := range []struct {
		name      string
		intensity float64
	}{
		{"subtle", 0.2},
		{"moderate", 0.5},
		{"intense", 0.9},
	} {
		fmt.Printf("  [%-8s %.1f] %s\n", band.name, band.intensity, engine.ApplyGlitch(sample, band.intensity))
	}
	fmt.Println()

	fmt.Println(header.Render("Emotional states"))
	var rng *rand.Rand
	if demoSeed != 0 {
		rng = rand.New(rand.NewSource(demoSeed))
	}
	tone := glitch.NewToneModulator(rng)
	line := "Maybe you should rest. The night can wait for you."
	for _, state := range persona.States() {
		fmt.Printf("  [%-11s] %s\n", state, tone.Modulate(line, string(state), 0.8))
	}
	fmt.Println()

	fmt.Println(header.Render("Traits"))
	for _, trait := range cfg.Traits {
		fmt.Printf("  %-22s %.2f  %s\n", trait.Name, trait.Intensity, trait.Description)
	}
	fmt.Println()

	fmt.Println(header.Render("Scenarios"))
	for _, sc := range engine.Scenarios() {
		fmt.Printf("  %-24s w=%.1f i=%.1f  %s\n", sc.ID, sc.Weight, sc.Intensity, sc.Description)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Int64Var(&demoSeed, "seed", 0, "Random seed for reproducible output (0 = time-based)")
}
