package embedding

import (
	"context"
	"fmt"
	"sync"
)

// DefaultWorkers is the default embedding concurrency. Provider throughput,
// not CPU count, is the bottleneck, so this stays deliberately small.
const DefaultWorkers = 4

// Pipeline embeds batches of texts through a fixed-size worker pool,
// preserving input order in the output.
type Pipeline struct {
	provider Provider
	workers  int
}

// NewPipeline creates a pipeline over the given provider. workers <= 0
// selects DefaultWorkers.
func NewPipeline(provider Provider, workers int) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{provider: provider, workers: workers}
}

// ProgressFunc receives progress updates while a batch is being embedded.
type ProgressFunc func(done, total int)

// EmbedAll embeds every text and returns the vectors in input order.
// The first provider error cancels the remaining work and is returned.
func (p *Pipeline) EmbedAll(ctx context.Context, texts []string, progress ProgressFunc) ([]Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		text  string
	}

	jobs := make(chan job)
	results := make([]Embedding, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				emb, err := p.provider.Embed(ctx, j.text)
				if err != nil {
					fail(fmt.Errorf("embedding text %d: %w", j.index, err))
					return
				}
				mu.Lock()
				results[j.index] = emb
				done++
				n := done
				mu.Unlock()
				if progress != nil {
					progress(n, len(texts))
				}
			}
		}()
	}

feed:
	for i, text := range texts {
		select {
		case jobs <- job{index: i, text: text}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
