// Package indexer orchestrates full index rebuilds: articles are read from
// the metadata store, embedded through the bounded pipeline, and assembled
// into a fresh vector store generation that is swapped in atomically.
package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/article"
	"github.com/scholium/arxsearch/internal/embedding"
	"github.com/scholium/arxsearch/internal/vecstore"
)

// MaxAbstractLength is the maximum abstract length (in characters) fed to
// the embedding model. Longer abstracts are truncated; small models have
// limited context windows and the opening of an abstract carries most of
// its semantic content.
const MaxAbstractLength = 8000

// ArticleSource is the read surface the builder needs from the metadata
// store.
type ArticleSource interface {
	ListAll() ([]article.Article, error)
}

// BatchSource adapts an in-memory article batch to ArticleSource, so
// ingestion can embed a freshly normalized batch before persisting it.
type BatchSource []article.Article

func (s BatchSource) ListAll() ([]article.Article, error) { return s, nil }

// BuildStats reports the outcome of one rebuild.
type BuildStats struct {
	ArticlesIndexed int           `json:"articles_indexed"`
	Dimension       int           `json:"dimension"`
	Model           string        `json:"model"`
	Duration        time.Duration `json:"duration"`
}

// Builder constructs vector store generations from persisted articles.
type Builder struct {
	provider embedding.Provider
	source   ArticleSource
	logger   *zap.Logger
	workers  int
	progress embedding.ProgressFunc
}

// NewBuilder creates a builder embedding with the given concurrency.
// workers <= 0 selects the pipeline default.
func NewBuilder(provider embedding.Provider, source ArticleSource, logger *zap.Logger, workers int) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		provider: provider,
		source:   source,
		logger:   logger,
		workers:  workers,
	}
}

// SetProgress sets a callback receiving embedding progress updates.
func (b *Builder) SetProgress(fn embedding.ProgressFunc) {
	b.progress = fn
}

// Build embeds every persisted article and returns a fully constructed
// store. The caller publishes it via a Handle swap; until then the previous
// generation keeps serving queries. Every persisted article gets exactly one
// vector: a provider failure aborts the build and leaves the live index
// untouched.
func (b *Builder) Build(ctx context.Context) (*vecstore.Store, *BuildStats, error) {
	start := time.Now()

	articles, err := b.source.ListAll()
	if err != nil {
		return nil, nil, fmt.Errorf("loading articles: %w", err)
	}

	texts := make([]string, len(articles))
	for i, art := range articles {
		texts[i] = EmbeddingText(art)
	}

	pipeline := embedding.NewPipeline(b.provider, b.workers)
	embs, err := pipeline.EmbedAll(ctx, texts, b.progress)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding corpus: %w", err)
	}

	entries := make([]vecstore.Entry, len(articles))
	for i, art := range articles {
		entries[i] = vecstore.Entry{ID: art.ID, Vector: embs[i].Vector}
	}

	store, err := vecstore.Build(b.provider.ModelName(), b.provider.Dimensions(), entries)
	if err != nil {
		return nil, nil, fmt.Errorf("building vector store: %w", err)
	}

	stats := &BuildStats{
		ArticlesIndexed: store.Size(),
		Dimension:       store.Dimension(),
		Model:           store.ModelName(),
		Duration:        time.Since(start),
	}

	b.logger.Info("vector index built",
		zap.Int("articles", stats.ArticlesIndexed),
		zap.Int("dimension", stats.Dimension),
		zap.String("model", stats.Model),
		zap.Duration("duration", stats.Duration))

	return store, stats, nil
}

// EmbeddingText combines title, abstract, and categories into the text that
// gets embedded for an article.
func EmbeddingText(art article.Article) string {
	var parts []string
	if art.Title != "" {
		parts = append(parts, "Title: "+art.Title)
	}
	abstract := art.Abstract
	if len(abstract) > MaxAbstractLength {
		abstract = abstract[:MaxAbstractLength]
	}
	if abstract != "" {
		parts = append(parts, "Abstract: "+abstract)
	}
	if len(art.Categories) > 0 {
		parts = append(parts, "Categories: "+strings.Join(art.Categories, ", "))
	}
	return strings.Join(parts, " ")
}
