package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the provider could not be reached or returned an
// unusable response. Callers decide whether and when to retry.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// EmbedBatch generates embeddings for several texts, preserving input
	// order. Implementations may issue one request or many.
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
