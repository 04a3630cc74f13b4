package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nocturne/src/config"
	"nocturne/src/persona"
	"nocturne/src/session"
)

var (
	// Persistent flags
	personaName string
	cfgFile     string
)

// version is stamped at release time.
const version = "0.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nocturne",
	Short: "Persona engine with familiarity tiers, glitch aesthetics and consent-aware dialogue",
	Long: `nocturne runs a character persona whose voice shifts with familiarity,
conversation context and time of day.

Responses pass through a glitch text effect whose intensity is computed
from the familiarity tier and the conversation context. Consent signals
in the user's input are detected and always take precedence over the
aesthetic.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&personaName, "persona", "P", "", "Persona to load (name or alias)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/nocturne/config.toml)")

	viper.BindPFlag("persona.default", rootCmd.PersistentFlags().Lookup("persona"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NOCTURNE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		// Config file loaded successfully
	}
}

// loadPersona resolves the persona from the flag, environment and settings
// file, in that order.
func loadPersona() (*persona.Config, error) {
	name := personaName
	if name == "" {
		name = viper.GetString("persona.default")
	}
	if name == "" {
		name = "nocturne"
	}
	return persona.LoadConfig(name)
}

// thresholdsFor maps a persona's progression settings to session thresholds.
func thresholdsFor(cfg *persona.Config) session.Thresholds {
	th := session.DefaultThresholds()
	if cfg.Progression.EstablishedAfter > 0 {
		th.EstablishedAfter = cfg.Progression.EstablishedAfter
	}
	if cfg.Progression.IntimateAfter > 0 {
		th.IntimateAfter = cfg.Progression.IntimateAfter
	}
	return th
}
