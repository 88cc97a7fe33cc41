// Package retrieval orchestrates query embedding, vector search, metadata
// filtering, and ranked result assembly.
package retrieval

import (
	"errors"

	"github.com/scholium/arxsearch/internal/article"
	"github.com/scholium/arxsearch/internal/storage"
)

// SortMode selects the ordering of the final result list.
type SortMode string

const (
	// SortRelevance orders by vector score, descending. Default.
	SortRelevance SortMode = "relevance"
	// SortYear orders by publication year, newest first, score as tie-break.
	SortYear SortMode = "year"
	// SortYearAsc orders by publication year, oldest first, score as tie-break.
	SortYearAsc SortMode = "year-asc"
)

// Errors returned by the engine.
var (
	ErrNoIndex     = errors.New("no vector index loaded")
	ErrEmptyQuery  = errors.New("query text is empty")
	ErrInvalidSort = errors.New("invalid sort mode")
)

// Options configures one search call.
type Options struct {
	K          int      // Result count; <= 0 selects DefaultK
	YearFrom   int      // Inclusive lower publication-year bound, 0 = open
	YearTo     int      // Inclusive upper publication-year bound, 0 = open
	Categories []string // Pass articles carrying at least one of these codes
	Sort       SortMode // Empty selects SortRelevance
}

// filters converts the option bounds to a storage predicate.
func (o Options) filters() storage.Filters {
	return storage.Filters{
		YearFrom:   o.YearFrom,
		YearTo:     o.YearTo,
		Categories: o.Categories,
	}
}

// Result is one ranked article with its similarity score.
type Result struct {
	article.Article
	Score float32 `json:"score"`
}

// Response is a complete ranked answer to one query.
type Response struct {
	Query   string   `json:"query"`
	Model   string   `json:"model"`
	Sort    SortMode `json:"sort"`
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}
