package main

import (
	"context"

	"github.com/scholium/arxsearch/internal/embedding"
	"github.com/scholium/arxsearch/internal/storage"
	"github.com/scholium/arxsearch/internal/vecstore"
)

// mustOpenDatabase opens the metadata store or exits.
func mustOpenDatabase() *storage.DB {
	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		exitWithError(ExitConfigError, "opening database %s: %v", cfg.DBPath(), err)
	}
	return db
}

// buildProvider constructs the configured embedding provider.
func buildProvider() embedding.Provider {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	default:
		var opts []embedding.OllamaOption
		if cfg.Embedding.BaseURL != "" {
			opts = append(opts, embedding.WithBaseURL(cfg.Embedding.BaseURL))
		}
		if cfg.Embedding.Model != "" {
			opts = append(opts, embedding.WithModel(cfg.Embedding.Model))
		}
		opts = append(opts, embedding.WithDimensions(cfg.Embedding.Dimensions))
		return embedding.NewOllamaProvider(opts...)
	}
}

// mustCheckProvider verifies a reachable Ollama daemon when that provider is
// configured. The OpenAI provider has no cheap liveness probe; its first
// embedding call surfaces failures instead.
func mustCheckProvider(ctx context.Context, provider embedding.Provider) {
	if ollama, ok := provider.(*embedding.OllamaProvider); ok {
		if err := ollama.IsAvailable(ctx); err != nil {
			exitWithError(ExitDataError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
		}
		hasModel, err := ollama.HasModel(ctx)
		if err != nil {
			exitWithError(ExitError, "checking model availability: %v", err)
		}
		if !hasModel {
			exitWithError(ExitDataError, "Embedding model '%s' not found\n\nRun 'ollama pull %s' to download it.",
				ollama.ModelName(), ollama.ModelName())
		}
	}
}

// mustLoadIndex loads the on-disk vector index into a fresh handle or exits.
func mustLoadIndex() *vecstore.Handle {
	store, err := vecstore.Load(cfg.IndexPath(), cfg.Embedding.Dimensions)
	if err != nil {
		if err == vecstore.ErrIndexNotFound {
			exitWithError(ExitConfigError, "Vector index not found\n\nRun 'arxsearch ingest' or 'arxsearch rebuild' to create it.")
		}
		exitWithError(ExitError, "loading index: %v", err)
	}
	return vecstore.NewHandle(store)
}
