package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholium/arxsearch/internal/indexer"
)

var rebuildNoProgress bool

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().BoolVar(&rebuildNoProgress, "no-progress", false, "Suppress progress output")
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status          string  `json:"status"`
	ArticlesIndexed int     `json:"articles_indexed"`
	Dimension       int     `json:"dimension"`
	Model           string  `json:"model"`
	DurationSeconds float64 `json:"duration_seconds"`
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from the stored corpus",
	Long: `Re-embed every stored article and rebuild the vector index without
re-crawling. Useful after switching embedding models.

The existing index file stays valid until the new one is fully written.`,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	provider := buildProvider()
	mustCheckProvider(ctx, provider)

	db := mustOpenDatabase()
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting articles: %v", err)
	}
	if count == 0 {
		exitWithError(ExitDataError, "corpus is empty; run 'arxsearch ingest' first")
	}

	builder := indexer.NewBuilder(provider, db, logger, cfg.Embedding.Workers)
	if humanOutput && !rebuildNoProgress {
		builder.SetProgress(printProgress)
	}

	store, stats, err := builder.Build(ctx)
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}

	if err := store.Save(cfg.IndexPath()); err != nil {
		exitWithError(ExitError, "saving index: %v", err)
	}
	if err := indexer.NewReport(stats, nil).Write(cfg.ReportPath()); err != nil {
		logger.Warn("writing build report failed")
	}

	result := RebuildResult{
		Status:          "ok",
		ArticlesIndexed: stats.ArticlesIndexed,
		Dimension:       stats.Dimension,
		Model:           stats.Model,
		DurationSeconds: stats.Duration.Seconds(),
	}

	if humanOutput {
		fmt.Printf("Rebuild complete: %d articles indexed with %s (%d dimensions)\n",
			result.ArticlesIndexed, result.Model, result.Dimension)
		return nil
	}
	return outputJSON(result)
}
