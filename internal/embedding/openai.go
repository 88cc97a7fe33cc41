package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/scholium/arxsearch/internal/metrics"
)

// DefaultOpenAIModel is the embedding model used unless configured otherwise.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIProvider generates embeddings via an OpenAI-compatible embeddings API.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// OpenAIConfig holds the provider settings.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // Optional override for OpenAI-compatible endpoints
	Model      string
	Dimensions int
}

// NewOpenAIProvider creates an OpenAI-compatible embedding provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(model),
		dimensions: dims,
	}
}

// Embed generates an embedding for a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	embs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return Embedding{}, err
	}
	return embs[0], nil
}

// EmbedBatch generates embeddings for several texts in one API call,
// preserving input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out, err := p.createEmbeddings(ctx, texts)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

func (p *OpenAIProvider) createEmbeddings(ctx context.Context, texts []string) ([]Embedding, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     p.dimensions,
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrUnavailable, len(resp.Data), len(texts))
	}

	out := make([]Embedding, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrUnavailable, d.Index)
		}
		if len(d.Embedding) != p.dimensions {
			return nil, fmt.Errorf("%w: unexpected embedding dimensions: got %d, want %d",
				ErrUnavailable, len(d.Embedding), p.dimensions)
		}
		out[d.Index] = Embedding{Vector: d.Embedding}
	}
	return out, nil
}

// ModelName returns the name of the embedding model.
func (p *OpenAIProvider) ModelName() string {
	return string(p.model)
}

// Dimensions returns the expected vector dimensions.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}
