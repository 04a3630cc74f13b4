package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nocturne/src/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage nocturne configuration",
	Long: `Manage nocturne configuration settings.

Examples:
  nocturne config init
  nocturne config get redis.addr
  nocturne config set history.enabled false
  nocturne config list
  nocturne config paths
  nocturne config edit`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.WriteDefaultSettings()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// configGetCmd represents the config get command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := viper.Get(key)
		if value == nil {
			fmt.Printf("Key '%s' not found\n", key)
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

// configSetCmd represents the config set command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if value == "true" || value == "false" {
			viper.Set(key, value == "true")
		} else {
			viper.Set(key, value)
		}

		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			if err := config.EnsureDirs(); err != nil {
				return err
			}
			configFile = config.SettingsPath()
		}

		if err := viper.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Set %s = %v\n", key, value)
		fmt.Printf("Config saved to %s\n", configFile)
		return nil
	},
}

// configListCmd represents the config list command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Run: func(cmd *cobra.Command, args []string) {
		settings := viper.AllSettings()

		flattened := flattenMap("", settings)

		var keys []string
		for k := range flattened {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		if len(keys) == 0 {
			fmt.Println("No configuration settings found")
			return
		}

		fmt.Println("Configuration settings:")
		for _, key := range keys {
			fmt.Printf("  %s = %v\n", key, flattened[key])
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Printf("\nConfig file: %s\n", configFile)
		}
	},
}

// configPathsCmd represents the config paths command
var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the resolved configuration and data paths",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("config dir:   %s\n", config.ConfigDir())
		fmt.Printf("data dir:     %s\n", config.DataDir())
		fmt.Printf("personas dir: %s\n", config.PersonasDir())
		fmt.Printf("settings:     %s\n", config.SettingsPath())
		fmt.Printf("history db:   %s\n", config.HistoryDBPath())
		fmt.Printf("socket:       %s\n", config.SocketPath())
	},
}

// configEditCmd represents the config edit command
var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file in your default editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			if err := config.EnsureDirs(); err != nil {
				return err
			}
			configFile = config.SettingsPath()

			if _, err := os.Stat(configFile); os.IsNotExist(err) {
				if err := os.WriteFile(configFile, []byte("# nocturne configuration file\n"), 0644); err != nil {
					return err
				}
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = os.Getenv("VISUAL")
		}
		if editor == "" {
			for _, e := range []string{"vim", "vi", "nano", "emacs"} {
				if _, err := exec.LookPath(e); err == nil {
					editor = e
					break
				}
			}
		}
		if editor == "" {
			return fmt.Errorf("no editor found; set $EDITOR or $VISUAL")
		}

		editorCmd := exec.Command(editor, configFile)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr

		return editorCmd.Run()
	},
}

// flattenMap flattens a nested map into dot-notation keys
func flattenMap(prefix string, m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]interface{}:
			nested := flattenMap(fullKey, v)
			for k, val := range nested {
				result[k] = val
			}
		case []interface{}:
			var items []string
			for _, item := range v {
				items = append(items, fmt.Sprintf("%v", item))
			}
			result[fullKey] = strings.Join(items, ", ")
		default:
			result[fullKey] = value
		}
	}

	return result
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathsCmd)
	configCmd.AddCommand(configEditCmd)
}
