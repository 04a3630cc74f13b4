package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nocturne/src/config"
	"nocturne/src/database"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded conversation history",
	Long: `Inspect recorded conversation history.

Examples:
  nocturne history list
  nocturne history show <session-id>`,
}

// historyListCmd represents the history list command
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent exchanges across all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		exchanges, err := db.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(exchanges) == 0 {
			fmt.Println("No history recorded")
			return nil
		}

		for _, e := range exchanges {
			fmt.Printf("[%s] %s %s (%s, intensity %.2f)\n",
				e.CreatedAt.Format("2006-01-02 15:04"),
				shortID(e.SessionID), e.Persona, e.Tier, e.Intensity)
			fmt.Printf("  > %s\n", truncate(e.UserText, 80))
			fmt.Printf("  < %s\n", truncate(e.ReplyText, 80))
		}
		return nil
	},
}

// historyShowCmd represents the history show command
var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Display the exchanges of one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		db, err := openHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		exchanges, err := db.RecentBySession(sessionID, historyLimit)
		if err != nil {
			return err
		}
		if len(exchanges) == 0 {
			fmt.Printf("No exchanges found for session %s\n", sessionID)
			return nil
		}

		fmt.Printf("Session: %s\nPersona: %s\n\n", sessionID, exchanges[0].Persona)
		for _, e := range exchanges {
			fmt.Printf("[%s] you: %s\n", e.CreatedAt.Format("15:04:05"), e.UserText)
			fmt.Printf("          %s: %s\n\n", e.Persona, e.ReplyText)
		}
		return nil
	},
}

func openHistory() (*database.HistoryDB, error) {
	path := viper.GetString("history.path")
	if path == "" {
		path = config.HistoryDBPath()
	}
	return database.NewHistoryDB(path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of exchanges to show")
	historyShowCmd.Flags().IntVar(&historyLimit, "limit", 100, "Number of exchanges to show")
}
