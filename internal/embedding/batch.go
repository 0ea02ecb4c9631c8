package embedding

import (
	"context"
	"sync"
)

// BatchConfig carries EmbedBatch's settings. EmbedBatch bounds concurrency by
// Parallelism; it does not read BatchSize and embeds each text with its own
// Embed call.
type BatchConfig struct {
	BatchSize   int
	Parallelism int
}

// DefaultBatchConfig mirrors reasonable defaults for a remote embedding call.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{BatchSize: 32, Parallelism: 4}
}

// EmbedBatch embeds every text in order, bounding concurrency to cfg.Parallelism.
// A failure on one entry is recorded in that entry's BatchResult.Err and does
// not prevent its neighbors from completing (spec §4.1 Batch).
func EmbedBatch(ctx context.Context, e Embedder, texts []string, cfg BatchConfig) []BatchResult {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}

	results := make([]BatchResult, len(texts))
	sem := make(chan struct{}, cfg.Parallelism)
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()

			v, err := e.Embed(ctx, text)
			results[i] = BatchResult{Vector: v, Err: err}
		}(i, text)
	}

	wg.Wait()
	return results
}
