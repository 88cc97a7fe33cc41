package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider := NewOllamaProvider()

	if provider.baseURL != DefaultOllamaURL {
		t.Errorf("baseURL = %s, want %s", provider.baseURL, DefaultOllamaURL)
	}
	if provider.model != DefaultModel {
		t.Errorf("model = %s, want %s", provider.model, DefaultModel)
	}
	if provider.dimensions != DefaultDimensions {
		t.Errorf("dimensions = %d, want %d", provider.dimensions, DefaultDimensions)
	}
	if provider.client == nil {
		t.Error("client should not be nil")
	}
}

func TestNewOllamaProvider_WithOptions(t *testing.T) {
	customURL := "http://custom:8080"
	customModel := "custom-model"
	customDimensions := 768
	customTimeout := 60 * time.Second

	provider := NewOllamaProvider(
		WithBaseURL(customURL),
		WithModel(customModel),
		WithDimensions(customDimensions),
		WithTimeout(customTimeout),
	)

	if provider.baseURL != customURL {
		t.Errorf("baseURL = %s, want %s", provider.baseURL, customURL)
	}
	if provider.model != customModel {
		t.Errorf("model = %s, want %s", provider.model, customModel)
	}
	if provider.dimensions != customDimensions {
		t.Errorf("dimensions = %d, want %d", provider.dimensions, customDimensions)
	}
	if provider.client.Timeout != customTimeout {
		t.Errorf("timeout = %v, want %v", provider.client.Timeout, customTimeout)
	}
}

func TestOllamaProvider_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathEmbeddings {
			t.Errorf("path = %s, want %s", r.URL.Path, apiPathEmbeddings)
		}

		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Prompt != "hello" {
			t.Errorf("prompt = %q, want %q", req.Prompt, "hello")
		}

		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(WithBaseURL(srv.URL), WithDimensions(3))
	emb, err := provider.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if emb.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", emb.Dimensions())
	}
	if emb.Vector[1] != 0.2 {
		t.Errorf("Vector = %v", emb.Vector)
	}
}

func TestOllamaProvider_Embed_WrongDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2}})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(WithBaseURL(srv.URL), WithDimensions(3))
	_, err := provider.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Embed() error = %v, want ErrUnavailable", err)
	}
}

func TestOllamaProvider_Embed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not loaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := NewOllamaProvider(WithBaseURL(srv.URL), WithDimensions(3))
	_, err := provider.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Embed() error = %v, want ErrUnavailable", err)
	}
}

func TestOllamaProvider_Embed_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	provider := NewOllamaProvider(WithBaseURL(srv.URL), WithDimensions(3))
	_, err := provider.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Embed() error = %v, want ErrUnavailable", err)
	}
}

func TestOllamaProvider_EmbedBatch(t *testing.T) {
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompts = append(prompts, req.Prompt)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(prompts)), 0}})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(WithBaseURL(srv.URL), WithDimensions(2))
	embs, err := provider.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(embs) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(embs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if prompts[i] != want {
			t.Errorf("prompts[%d] = %q, want %q (input order)", i, prompts[i], want)
		}
	}
}

func TestOllamaProvider_HasModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathTags {
			t.Errorf("path = %s, want %s", r.URL.Path, apiPathTags)
		}
		json.NewEncoder(w).Encode(ollamaTagsResponse{
			Models: []ollamaModel{{Name: "all-minilm:l6-v2"}, {Name: "llama3:8b"}},
		})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(WithBaseURL(srv.URL))
	ok, err := provider.HasModel(context.Background())
	if err != nil {
		t.Fatalf("HasModel() error = %v", err)
	}
	if !ok {
		t.Error("HasModel() = false, want true")
	}

	other := NewOllamaProvider(WithBaseURL(srv.URL), WithModel("missing-model"))
	ok, err = other.HasModel(context.Background())
	if err != nil {
		t.Fatalf("HasModel() error = %v", err)
	}
	if ok {
		t.Error("HasModel() = true for missing model")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaTagsResponse{})
	}))

	provider := NewOllamaProvider(WithBaseURL(srv.URL))
	if err := provider.IsAvailable(context.Background()); err != nil {
		t.Errorf("IsAvailable() error = %v", err)
	}

	srv.Close()
	if err := provider.IsAvailable(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("IsAvailable() after close error = %v, want ErrUnavailable", err)
	}
}

func TestFormatErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple error message",
			input:    "error occurred",
			expected: "error occurred",
		},
		{
			name:     "empty body",
			input:    "",
			expected: "",
		},
		{
			name:     "json error",
			input:    `{"error": "not found"}`,
			expected: `{"error": "not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatErrorBody(strings.NewReader(tt.input))
			if result != tt.expected {
				t.Errorf("formatErrorBody() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestProviders_ImplementProvider(t *testing.T) {
	var _ Provider = (*OllamaProvider)(nil)
	var _ Provider = (*OpenAIProvider)(nil)
}
