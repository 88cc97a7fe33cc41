package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholium/arxsearch/internal/embedding"
	"github.com/scholium/arxsearch/internal/retrieval"
)

var (
	searchLimit      int
	searchYearFrom   int
	searchYearTo     int
	searchCategories []string
	searchSort       string
	searchAbstract   bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of results (default from config)")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "Inclusive lower publication-year bound")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "Inclusive upper publication-year bound")
	searchCmd.Flags().StringSliceVarP(&searchCategories, "category", "c", nil, "Category code filter (repeatable)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "relevance", "Sort mode: relevance, year, year-asc")
	searchCmd.Flags().BoolVar(&searchAbstract, "abstract", false, "Include abstracts in human output")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search articles by semantic similarity",
	Long: `Search the corpus using semantic similarity to the query text.

Unlike keyword search, semantic search understands the meaning of your
query and finds conceptually related articles even without exact word
matches. Optional filters restrict results by publication year and
category code.

Examples:
  arxsearch search "graph neural networks for molecules"
  arxsearch search "transformer efficiency" --year-from 2020 -c cs.LG
  arxsearch search "protein folding" --sort year -l 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	provider := buildProvider()
	handle := mustLoadIndex()

	db := mustOpenDatabase()
	defer db.Close()

	engine := retrieval.NewEngine(provider, handle, db, logger, cfg.Retrieval.Overfetch)

	k := searchLimit
	if k == 0 {
		k = cfg.Retrieval.DefaultK
	}

	resp, err := engine.Search(ctx, args[0], retrieval.Options{
		K:          k,
		YearFrom:   searchYearFrom,
		YearTo:     searchYearTo,
		Categories: searchCategories,
		Sort:       retrieval.SortMode(searchSort),
	})
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrEmptyQuery), errors.Is(err, retrieval.ErrInvalidSort):
			exitWithError(ExitError, "%v", err)
		case errors.Is(err, embedding.ErrUnavailable):
			exitWithError(ExitDataError, "embedding provider unavailable: %v", err)
		default:
			exitWithError(ExitError, "searching: %v", err)
		}
	}

	if humanOutput {
		printResultsHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

func printResultsHuman(resp *retrieval.Response) {
	if len(resp.Results) == 0 {
		fmt.Println("No articles found")
		return
	}

	fmt.Printf("Found %d articles:\n\n", len(resp.Results))
	for i, r := range resp.Results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, r.ID)
		fmt.Printf("   %s\n", truncateString(r.Title, searchTitleMaxLen))

		var names []string
		for j, a := range r.Authors {
			if j >= 3 {
				names = append(names, "et al.")
				break
			}
			names = append(names, a.Name)
		}
		fmt.Printf("   %s (%d)\n", strings.Join(names, "; "), r.Year)

		if len(r.Categories) > 0 {
			fmt.Printf("   %s\n", strings.Join(r.Categories, ", "))
		}
		if searchAbstract {
			fmt.Printf("   %s\n", truncateString(r.Abstract, 300))
		}
		fmt.Println()
	}
}
