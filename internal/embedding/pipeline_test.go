package embedding

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
)

// indexProvider embeds a decimal string as a unit vector whose first
// component encodes the number, making output order observable.
type indexProvider struct {
	mu    sync.Mutex
	calls int
	fail  map[string]error
}

func (p *indexProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := ctx.Err(); err != nil {
		return Embedding{}, err
	}

	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.fail != nil {
		if err, ok := p.fail[text]; ok {
			return Embedding{}, err
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return Embedding{}, err
	}
	return Embedding{Vector: []float32{float32(n), 1}}, nil
}

func (p *indexProvider) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, len(texts))
	for i, text := range texts {
		emb, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (p *indexProvider) ModelName() string { return "index-provider" }
func (p *indexProvider) Dimensions() int   { return 2 }

func TestPipeline_PreservesOrder(t *testing.T) {
	texts := make([]string, 50)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	pipeline := NewPipeline(&indexProvider{}, 4)
	embs, err := pipeline.EmbedAll(context.Background(), texts, nil)
	if err != nil {
		t.Fatalf("EmbedAll() error = %v", err)
	}
	if len(embs) != len(texts) {
		t.Fatalf("got %d embeddings, want %d", len(embs), len(texts))
	}
	for i, emb := range embs {
		if int(emb.Vector[0]) != i {
			t.Errorf("embs[%d].Vector[0] = %v, want %d (input order)", i, emb.Vector[0], i)
		}
	}
}

func TestPipeline_SingleWorker(t *testing.T) {
	pipeline := NewPipeline(&indexProvider{}, 1)
	embs, err := pipeline.EmbedAll(context.Background(), []string{"0", "1", "2"}, nil)
	if err != nil {
		t.Fatalf("EmbedAll() error = %v", err)
	}
	if len(embs) != 3 {
		t.Errorf("got %d embeddings, want 3", len(embs))
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	pipeline := NewPipeline(&indexProvider{}, 4)
	embs, err := pipeline.EmbedAll(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("EmbedAll() error = %v", err)
	}
	if embs != nil {
		t.Errorf("EmbedAll(nil) = %v, want nil", embs)
	}
}

func TestPipeline_PropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	provider := &indexProvider{fail: map[string]error{"7": boom}}

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	pipeline := NewPipeline(provider, 4)
	_, err := pipeline.EmbedAll(context.Background(), texts, nil)
	if !errors.Is(err, boom) {
		t.Errorf("EmbedAll() error = %v, want wrapped boom", err)
	}
}

func TestPipeline_ReportsProgress(t *testing.T) {
	texts := []string{"0", "1", "2", "3", "4"}

	var mu sync.Mutex
	var last, calls int

	pipeline := NewPipeline(&indexProvider{}, 2)
	_, err := pipeline.EmbedAll(context.Background(), texts, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if done > last {
			last = done
		}
		if total != len(texts) {
			t.Errorf("progress total = %d, want %d", total, len(texts))
		}
	})
	if err != nil {
		t.Fatalf("EmbedAll() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != len(texts) {
		t.Errorf("progress called %d times, want %d", calls, len(texts))
	}
	if last != len(texts) {
		t.Errorf("final progress = %d, want %d", last, len(texts))
	}
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := NewPipeline(&indexProvider{}, 2)
	if _, err := pipeline.EmbedAll(ctx, []string{"0", "1"}, nil); err == nil {
		t.Error("EmbedAll() with canceled context should fail")
	}
}
