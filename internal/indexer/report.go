package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/scholium/arxsearch/internal/normalizer"
)

// ReportFileName is the name of the build report written next to the index.
const ReportFileName = "build_report.json"

// Report is the JSON build report combining ingestion and indexing outcomes.
type Report struct {
	BuiltAt         time.Time `json:"built_at"`
	Model           string    `json:"model"`
	Dimension       int       `json:"dimension"`
	ArticlesIndexed int       `json:"articles_indexed"`
	DurationMs      int64     `json:"duration_ms"`

	// Ingestion counters, present when the build followed an ingest run.
	Ingestion *normalizer.Report `json:"ingestion,omitempty"`
}

// NewReport assembles a report from build stats and an optional ingestion
// report.
func NewReport(stats *BuildStats, ingestion *normalizer.Report) Report {
	return Report{
		BuiltAt:         time.Now().UTC(),
		Model:           stats.Model,
		Dimension:       stats.Dimension,
		ArticlesIndexed: stats.ArticlesIndexed,
		DurationMs:      stats.Duration.Milliseconds(),
		Ingestion:       ingestion,
	}
}

// Write persists the report as indented JSON.
func (r Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
