package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/article"
	"github.com/scholium/arxsearch/internal/embedding"
	"github.com/scholium/arxsearch/internal/storage"
	"github.com/scholium/arxsearch/internal/vecstore"
)

const (
	// DefaultK is the result count when the caller does not specify one.
	DefaultK = 10

	// DefaultOverfetch is the multiplier applied to k when querying the
	// vector store, absorbing post-hoc filtering loss.
	DefaultOverfetch = 5

	// maxEscalations bounds the fetch-size doubling when filters exhaust
	// the candidate set before k results are found.
	maxEscalations = 3
)

// MetadataStore is the read surface the engine borrows from the metadata
// store during a query.
type MetadataStore interface {
	GetByIDs(ids []string) ([]article.Article, error)
	FilterIDs(ids []string, f storage.Filters) (map[string]bool, error)
}

// Engine answers natural-language queries against the current vector store
// generation joined with article metadata. It owns neither store; queries
// are read-only and safe to run concurrently with an index rebuild.
type Engine struct {
	provider  embedding.Provider
	handle    *vecstore.Handle
	meta      MetadataStore
	logger    *zap.Logger
	overfetch int
}

// NewEngine creates a retrieval engine. overfetch <= 1 selects
// DefaultOverfetch.
func NewEngine(provider embedding.Provider, handle *vecstore.Handle, meta MetadataStore, logger *zap.Logger, overfetch int) *Engine {
	if overfetch <= 1 {
		overfetch = DefaultOverfetch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		provider:  provider,
		handle:    handle,
		meta:      meta,
		logger:    logger,
		overfetch: overfetch,
	}
}

// Search embeds the query, scans the vector store with an over-fetch factor,
// applies metadata filters, and returns the top k surviving articles joined
// with full metadata. Either a complete ranked list or an error is returned,
// never a partial result.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	sortMode := opts.Sort
	if sortMode == "" {
		sortMode = SortRelevance
	}
	switch sortMode {
	case SortRelevance, SortYear, SortYearAsc:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sortMode)
	}

	k := opts.K
	if k <= 0 {
		k = DefaultK
	}

	store := e.handle.Current()
	if store == nil {
		return nil, ErrNoIndex
	}

	// The embedding call happens before touching either store and holds no
	// locks; a slow or failed provider cannot corrupt index state.
	queryEmb, err := e.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	survivors, err := e.candidates(store, queryEmb.Vector, k, opts.filters())
	if err != nil {
		return nil, err
	}
	if len(survivors) > k {
		survivors = survivors[:k]
	}

	results, err := e.join(survivors)
	if err != nil {
		return nil, err
	}
	orderResults(results, sortMode)

	return &Response{
		Query:   query,
		Model:   store.ModelName(),
		Sort:    sortMode,
		Results: results,
		Total:   len(results),
	}, nil
}

// candidates runs the over-fetched vector search and metadata filtering,
// escalating the fetch size when filtering exhausts the candidate set before
// k results are found. Survivors keep descending-score order.
func (e *Engine) candidates(store *vecstore.Store, query []float32, k int, f storage.Filters) ([]vecstore.Result, error) {
	fetch := k * e.overfetch

	for attempt := 0; ; attempt++ {
		if fetch > store.Size() {
			fetch = store.Size()
		}
		if fetch == 0 {
			return nil, nil
		}

		scored, err := store.Search(query, fetch)
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}

		ids := make([]string, len(scored))
		for i, r := range scored {
			ids[i] = r.ID
		}
		pass, err := e.meta.FilterIDs(ids, f)
		if err != nil {
			return nil, fmt.Errorf("applying filters: %w", err)
		}

		var survivors []vecstore.Result
		for _, r := range scored {
			if pass[r.ID] {
				survivors = append(survivors, r)
			}
		}

		if len(survivors) >= k || fetch >= store.Size() || attempt >= maxEscalations {
			return survivors, nil
		}

		fetch *= 2
		e.logger.Debug("escalating candidate fetch",
			zap.Int("fetch", fetch), zap.Int("survivors", len(survivors)), zap.Int("k", k))
	}
}

// join attaches full metadata to the surviving ids, preserving their order.
// An id present in the vector index but missing from the metadata store is
// an internal consistency error: logged and skipped, never fatal.
func (e *Engine) join(survivors []vecstore.Result) ([]Result, error) {
	if len(survivors) == 0 {
		return []Result{}, nil
	}

	ids := make([]string, len(survivors))
	scores := make(map[string]float32, len(survivors))
	for i, r := range survivors {
		ids[i] = r.ID
		scores[r.ID] = r.Score
	}

	arts, err := e.meta.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("joining metadata: %w", err)
	}

	if len(arts) < len(survivors) {
		found := make(map[string]bool, len(arts))
		for _, a := range arts {
			found[a.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				e.logger.Error("indexed article missing from metadata store", zap.String("id", id))
			}
		}
	}

	results := make([]Result, 0, len(arts))
	for _, a := range arts {
		results = append(results, Result{Article: a, Score: scores[a.ID]})
	}
	return results, nil
}

// orderResults re-sorts the final page per sort mode. Relevance keeps the
// vector-score order; metadata sorts use score then id as tie-breaks.
func orderResults(results []Result, mode SortMode) {
	switch mode {
	case SortYear:
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Year != results[j].Year {
				return results[i].Year > results[j].Year
			}
			return results[i].Score > results[j].Score
		})
	case SortYearAsc:
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Year != results[j].Year {
				return results[i].Year < results[j].Year
			}
			return results[i].Score > results[j].Score
		})
	}
}
