// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the recipe-finder CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recipe-finder/internal/secrets"
	"github.com/pdiddy/recipe-finder/internal/store"
	"github.com/pdiddy/recipe-finder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the process-wide structured logger, configured in the root
// PersistentPreRunE.
var logger zerolog.Logger

// secretDefault returns fallback when set, then the secret value for
// key, then "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the recipe-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "recipe-finder",
	Short: "Crawl recipe sites and index their structured recipe data",
	Long: `recipe-finder crawls cooking sites, extracts schema.org Recipe payloads
from their pages, and indexes the parsed recipes in a local SQLite database
with full-text search.

Seed the frontier with submit, run the pipeline with crawl, and query the
index with search and show. Incomplete recipes can be filled in with refine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env values become environment variables; missing file is fine.
		_ = godotenv.Load()

		level := zerolog.InfoLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./recipe-finder.yaml or ~/.config/recipe-finder/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding the SQLite database")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("recipe-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "recipe-finder"))
		}
	}

	viper.SetEnvPrefix("RECIPE_FINDER")
	viper.AutomaticEnv()
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openStore opens the database under the configured data directory.
func openStore() (*store.Store, error) {
	return store.NewStore(types.StoreConfig{
		DataDir:    viper.GetString("data-dir"),
		MaxResults: viper.GetInt("max-results"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
