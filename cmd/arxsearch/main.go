// Package main provides the arxsearch CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/config"
	"github.com/scholium/arxsearch/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	// configPath is the YAML configuration file location
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arxsearch",
	Short: "Semantic search over a scientific-article corpus",
	Long: `arxsearch ingests scientific articles from the arXiv API, stores their
metadata in SQLite, builds an exact-search vector index over abstract
embeddings, and answers natural-language queries by semantic similarity.

All commands output JSON by default for easy integration with other tools.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "arxsearch.yaml", "Path to configuration file")
	rootCmd.Version = Version
}

// setup loads .env, the configuration file, and the logger before any
// command runs.
func setup(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	cobra.OnFinalize(func() { _ = logger.Sync() })

	return nil
}
