package cmd

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"nocturne/src/scenario"
)

var (
	pickCategory   string
	pickMood       string
	pickIntensity  float64
	pickFavorites  []string
	pickSoftLimits []string
	pickHardLimits []string
	pickCount      int
	pickSeed       int64
)

// scenariosCmd represents the scenarios command
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List and select interaction scenarios",
	Long: `List and select interaction scenarios from the persona's table.

Examples:
  nocturne scenarios list
  nocturne scenarios pick --intensity 0.6 --favorite shadow_work
  nocturne scenarios pick --mood contemplative --seed 42`,
}

// scenariosListCmd represents the scenarios list command
var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the persona's scenario table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPersona()
		if err != nil {
			return err
		}

		idStyle := lipgloss.NewStyle().Bold(true)
		for _, sc := range cfg.Scenarios {
			fmt.Printf("%s  (%s/%s, weight %.1f, intensity %.1f)\n",
				idStyle.Render(sc.ID), sc.Category, sc.Mood, sc.Weight, sc.Intensity)
			if sc.Description != "" {
				fmt.Printf("    %s\n", sc.Description)
			}
		}
		return nil
	},
}

// scenariosPickCmd represents the scenarios pick command
var scenariosPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Select a scenario by weighted random choice",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPersona()
		if err != nil {
			return err
		}

		opts := []scenario.Option{}
		if pickSeed != 0 {
			opts = append(opts, scenario.WithRand(rand.New(rand.NewSource(pickSeed))))
		}
		selector := scenario.NewSelector(cfg.Scenarios, opts...)

		prefs := scenario.Preferences{
			Category:           pickCategory,
			Mood:               pickMood,
			PreferredIntensity: pickIntensity,
			Favorites:          pickFavorites,
			SoftLimits:         pickSoftLimits,
			HardLimits:         pickHardLimits,
		}

		for i := 0; i < pickCount; i++ {
			sc, err := selector.Select(prefs)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", sc.ID, sc.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosPickCmd)

	scenariosPickCmd.Flags().StringVar(&pickCategory, "category", "", "Only scenarios in this category")
	scenariosPickCmd.Flags().StringVar(&pickMood, "mood", "", "Only scenarios with this mood")
	scenariosPickCmd.Flags().Float64Var(&pickIntensity, "intensity", 0.5, "Preferred intensity (0.0-1.0)")
	scenariosPickCmd.Flags().StringSliceVar(&pickFavorites, "favorite", nil, "Scenario IDs to boost")
	scenariosPickCmd.Flags().StringSliceVar(&pickSoftLimits, "soft-limit", nil, "Scenario IDs to damp")
	scenariosPickCmd.Flags().StringSliceVar(&pickHardLimits, "hard-limit", nil, "Scenario IDs to exclude")
	scenariosPickCmd.Flags().IntVar(&pickCount, "count", 1, "Number of picks to make")
	scenariosPickCmd.Flags().Int64Var(&pickSeed, "seed", 0, "Random seed for reproducible picks (0 = time-based)")
}
