package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nocturne/src/daemon"
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the persona daemon",
	Long: `Manage the background persona daemon.

The daemon serves the engine over a unix socket via JSON-RPC so other
processes can share sessions and history.`,
}

// daemonStartCmd starts the daemon
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the persona daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if isRunning, pid := daemon.IsRunning(); isRunning {
			return fmt.Errorf("daemon is already running (PID: %d)", pid)
		}
		return daemon.Run(personaName)
	},
}

// daemonStopCmd stops the daemon
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the persona daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		isRunning, pid := daemon.IsRunning()
		if !isRunning {
			fmt.Println("Daemon is not running")
			return nil
		}

		fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
		if err := daemon.Stop(pid); err != nil {
			return err
		}
		fmt.Println("Daemon stopped successfully")
		return nil
	},
}

// daemonStatusCmd shows daemon status
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		isRunning, pid := daemon.IsRunning()
		if isRunning {
			fmt.Printf("Daemon is running (PID: %d)\n", pid)
		} else {
			fmt.Println("Daemon is not running")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}
