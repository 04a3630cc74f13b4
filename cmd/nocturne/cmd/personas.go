package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"nocturne/src/persona"
)

// personasCmd represents the personas command
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available personas",
	Long: `List available personas, embedded and user-defined.

User persona files in $XDG_CONFIG_HOME/nocturne/personas/ override
embedded personas of the same name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range persona.List() {
			cfg, err := persona.LoadConfig(id)
			if err != nil {
				fmt.Printf("  %s (unloadable: %v)\n", id, err)
				continue
			}

			name := cfg.Metadata.Name
			if cfg.Display.Color != "" {
				name = lipgloss.NewStyle().
					Foreground(lipgloss.Color(cfg.Display.Color)).
					Render(name)
			}
			fmt.Printf("  %-12s %s", id, name)
			if len(cfg.Metadata.Aliases) > 0 {
				fmt.Printf("  (aliases: %v)", cfg.Metadata.Aliases)
			}
			fmt.Println()
			if cfg.Metadata.Description != "" {
				fmt.Printf("    %s\n", cfg.Metadata.Description)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
