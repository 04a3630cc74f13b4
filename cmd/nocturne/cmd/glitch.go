package cmd

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nocturne/src/glitch"
)

var (
	glitchIntensity float64
	glitchSeed      int64
	glitchTone      string
)

// glitchCmd represents the glitch command
var glitchCmd = &cobra.Command{
	Use:   "glitch [text...]",
	Short: "Apply the glitch text effect to arbitrary text",
	Long: `Apply the glitch text effect to arbitrary text.

Reads from stdin when no text arguments are given. Intensity selects
the band: up to 0.3 strikes the occasional word, up to 0.7 corrupts
key words and wraps fragments in static, above that the text degrades
per letter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []glitch.Option
		if glitchSeed != 0 {
			opts = append(opts, glitch.WithRand(rand.New(rand.NewSource(glitchSeed))))
		}
		engine := glitch.NewEngine(opts...)

		var tone *glitch.ToneModulator
		if glitchTone != "" {
			var rng *rand.Rand
			if glitchSeed != 0 {
				rng = rand.New(rand.NewSource(glitchSeed))
			}
			tone = glitch.NewToneModulator(rng)
		}

		render := func(text string) {
			if tone != nil {
				text = tone.Modulate(text, glitchTone, glitchIntensity)
			}
			fmt.Println(engine.Apply(text, glitchIntensity))
		}

		if len(args) > 0 {
			render(strings.Join(args, " "))
			return nil
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			render(scanner.Text())
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(glitchCmd)

	glitchCmd.Flags().Float64VarP(&glitchIntensity, "intensity", "i", 0.5, "Glitch intensity (0.0-1.0)")
	glitchCmd.Flags().Int64Var(&glitchSeed, "seed", 0, "Random seed for reproducible output (0 = time-based)")
	glitchCmd.Flags().StringVar(&glitchTone, "tone", "", "Tone modulation to apply first (commanding, playful, melancholic, glitching)")
}
