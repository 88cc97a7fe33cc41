package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scholium/arxsearch/internal/article"
	"github.com/scholium/arxsearch/internal/arxiv"
	"github.com/scholium/arxsearch/internal/indexer"
	"github.com/scholium/arxsearch/internal/normalizer"
	"github.com/scholium/arxsearch/internal/taxonomy"
)

var (
	ingestQuery      string
	ingestMax        int
	ingestInput      string
	ingestNoProgress bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestQuery, "query", "", "arXiv search query (default from config)")
	ingestCmd.Flags().IntVar(&ingestMax, "max", 0, "Maximum records to fetch (default from config)")
	ingestCmd.Flags().StringVar(&ingestInput, "input", "", "Read raw records from a JSON file instead of crawling")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "Suppress progress output")
}

// IngestResult is the response for the ingest command.
type IngestResult struct {
	Status          string            `json:"status"`
	Fetched         int               `json:"fetched"`
	Accepted        int               `json:"accepted"`
	Duplicates      int               `json:"duplicates"`
	Invalid         int               `json:"invalid"`
	ArticlesIndexed int               `json:"articles_indexed"`
	Model           string            `json:"model"`
	DurationSeconds float64           `json:"duration_seconds"`
	Report          normalizer.Report `json:"report"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Crawl, normalize, persist, and index a fresh corpus",
	Long: `Fetch raw records from the arXiv API (or a local JSON file), normalize
and deduplicate them, build the vector index from the accepted batch, and
only then replace the stored corpus and the index on disk.

Embedding happens before anything is persisted, so a provider failure
leaves the previous corpus and index untouched.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	provider := buildProvider()
	mustCheckProvider(ctx, provider)

	records, err := fetchRecords(ctx)
	if err != nil {
		exitWithError(ExitError, "fetching records: %v", err)
	}

	tax := taxonomy.Default()
	norm := normalizer.New(tax, logger)
	accepted, report := norm.Normalize(records)
	if len(accepted) == 0 {
		exitWithError(ExitDataError, "no valid records among %d fetched (invalid: %d, duplicates: %d)",
			report.Input, report.Invalid, report.Duplicates)
	}

	// Embed before touching the database: a provider failure here leaves
	// the previous corpus and index in place and still paired.
	builder := indexer.NewBuilder(provider, indexer.BatchSource(accepted), logger, cfg.Embedding.Workers)
	if humanOutput && !ingestNoProgress {
		builder.SetProgress(printProgress)
	}

	store, stats, err := builder.Build(ctx)
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}

	db := mustOpenDatabase()
	defer db.Close()

	if err := db.ReplaceCorpus(accepted, tax.All()); err != nil {
		exitWithError(ExitError, "persisting corpus: %v", err)
	}
	if err := store.Save(cfg.IndexPath()); err != nil {
		exitWithError(ExitError, "saving index: %v", err)
	}
	if err := indexer.NewReport(stats, &report).Write(cfg.ReportPath()); err != nil {
		logger.Warn("writing build report failed")
	}

	result := IngestResult{
		Status:          "ok",
		Fetched:         report.Input,
		Accepted:        report.Accepted,
		Duplicates:      report.Duplicates,
		Invalid:         report.Invalid,
		ArticlesIndexed: stats.ArticlesIndexed,
		Model:           stats.Model,
		DurationSeconds: stats.Duration.Seconds(),
		Report:          report,
	}

	if humanOutput {
		fmt.Printf("Ingest complete:\n")
		fmt.Printf("  Fetched:    %d\n", result.Fetched)
		fmt.Printf("  Accepted:   %d\n", result.Accepted)
		fmt.Printf("  Duplicates: %d\n", result.Duplicates)
		fmt.Printf("  Invalid:    %d\n", result.Invalid)
		fmt.Printf("  Indexed:    %d (%s)\n", result.ArticlesIndexed, result.Model)
		return nil
	}
	return outputJSON(result)
}

// fetchRecords obtains the raw record batch either from the crawler or from
// a local JSON file.
func fetchRecords(ctx context.Context) ([]article.RawRecord, error) {
	if ingestInput != "" {
		data, err := os.ReadFile(ingestInput)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", ingestInput, err)
		}
		var records []article.RawRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ingestInput, err)
		}
		return records, nil
	}

	query := ingestQuery
	if query == "" {
		query = cfg.Crawler.Query
	}
	max := ingestMax
	if max == 0 {
		max = cfg.Crawler.MaxRecords
	}

	client := arxiv.NewClient(
		arxiv.WithPageSize(cfg.Crawler.PageSize),
		arxiv.WithLogger(logger),
	)
	return client.Fetch(ctx, query, max)
}
