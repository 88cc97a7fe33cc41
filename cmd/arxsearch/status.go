package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scholium/arxsearch/internal/storage"
	"github.com/scholium/arxsearch/internal/vecstore"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

// StatusResult is the response for the status command.
type StatusResult struct {
	Corpus  storage.Stats `json:"corpus"`
	Index   IndexStatus   `json:"index"`
	DataDir string        `json:"data_dir"`
}

// IndexStatus describes the on-disk vector index.
type IndexStatus struct {
	Present   bool   `json:"present"`
	Vectors   int    `json:"vectors,omitempty"`
	Dimension int    `json:"dimension,omitempty"`
	Model     string `json:"model,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus and index statistics",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		exitWithError(ExitError, "reading corpus stats: %v", err)
	}

	var idx IndexStatus
	store, err := vecstore.Load(cfg.IndexPath(), cfg.Embedding.Dimensions)
	switch err {
	case nil:
		idx = IndexStatus{
			Present:   true,
			Vectors:   store.Size(),
			Dimension: store.Dimension(),
			Model:     store.ModelName(),
		}
	case vecstore.ErrIndexNotFound:
		// Corpus without an index is a valid intermediate state.
	default:
		exitWithError(ExitError, "loading index: %v", err)
	}

	result := StatusResult{Corpus: stats, Index: idx, DataDir: cfg.DataDir}

	if humanOutput {
		printStatusHuman(result)
		return nil
	}
	return outputJSON(result)
}

func printStatusHuman(r StatusResult) {
	fmt.Printf("Corpus (%s):\n", r.DataDir)
	fmt.Printf("  Articles:    %d\n", r.Corpus.Articles)
	fmt.Printf("  Authors:     %d\n", r.Corpus.Authors)
	fmt.Printf("  Authorships: %d\n", r.Corpus.Authorships)
	fmt.Printf("  Categories:  %d\n", r.Corpus.Categories)

	if len(r.Corpus.ByYear) > 0 {
		years := make([]int, 0, len(r.Corpus.ByYear))
		for y := range r.Corpus.ByYear {
			years = append(years, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(years)))
		fmt.Printf("  By year:\n")
		for _, y := range years {
			fmt.Printf("    %d: %d\n", y, r.Corpus.ByYear[y])
		}
	}

	if r.Index.Present {
		fmt.Printf("Index:\n")
		fmt.Printf("  Vectors:   %d\n", r.Index.Vectors)
		fmt.Printf("  Dimension: %d\n", r.Index.Dimension)
		fmt.Printf("  Model:     %s\n", r.Index.Model)
	} else {
		fmt.Printf("Index: not built\n")
	}
}
