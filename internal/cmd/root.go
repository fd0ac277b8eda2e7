package cmd

import (
	"fmt"
	"os"

	"github.com/Digital-Shane/posteria/internal/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "posteria",
	Short: "Poster artwork aggregation service",
	Long: `posteria finds poster artwork for movies, TV shows and collections.

It searches The Movie Database, then gathers posters from TMDB, fanart.tv and
TheTVDB in parallel and merges them into one ordered list. Run it as an HTTP
service with "serve" or query once from the terminal with "search".`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.posteria/config.json)")

	rootCmd.AddCommand(serveCmd, searchCmd, configCmd, versionCmd)
}

// resolveConfigPath returns the --config value or the default location
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.ConfigPath()
}

// loadConfig reads and validates the configuration
func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
