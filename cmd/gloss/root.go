package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glosskit/gloss/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "gloss",
	Short: "Gloss is a review workflow engine for wiki documents",
	Long: `Gloss composes structured writing annotations into a wikitext review,
walks it through edit, preview and diff steps, and appends the result to the
document's talk section.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default: the user config dir)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// loadConfig resolves the --config flag into a loaded configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return &cfg, nil
}
