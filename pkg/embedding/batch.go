package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ProgressFunc reports batch progress after each item as (completed, total).
type ProgressFunc func(completed, total int)

// BatchEmbedder embeds slices of texts sequentially, pacing calls with a rate
// limiter so bulk ingestion stays under provider rate limits.
type BatchEmbedder struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewBatchEmbedder wraps a provider. callsPerSecond <= 0 selects the default
// pace of 10 calls/s (one call every ~100ms).
func NewBatchEmbedder(provider Provider, callsPerSecond float64) *BatchEmbedder {
	if callsPerSecond <= 0 {
		callsPerSecond = 10
	}
	return &BatchEmbedder{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(callsPerSecond), 1),
	}
}

// EmbedBatch embeds every text in order. A failing item is retried once; if it
// still fails its error is recorded at the matching index and the batch
// continues — one bad chunk must not sink its siblings. vectors[i] is nil
// exactly when errs[i] is non-nil.
func (b *BatchEmbedder) EmbedBatch(ctx context.Context, texts []string, onProgress ProgressFunc) (vectors [][]float32, errs []error) {
	vectors = make([][]float32, len(texts))
	errs = make([]error, len(texts))

	for i, text := range texts {
		if err := b.limiter.Wait(ctx); err != nil {
			errs[i] = err
			continue
		}

		vec, err := b.provider.Embed(ctx, text)
		if err != nil {
			// One retry for transient provider hiccups.
			vec, err = b.provider.Embed(ctx, text)
		}
		if err != nil {
			errs[i] = fmt.Errorf("embed item %d: %w", i, err)
		} else {
			vectors[i] = vec
		}

		if onProgress != nil {
			onProgress(i+1, len(texts))
		}
	}

	return vectors, errs
}

// EmbedAll is EmbedBatch with all-or-nothing semantics: the first recorded
// error aborts the result. Used where a document's chunks must be stored
// wholesale or not at all.
func (b *BatchEmbedder) EmbedAll(ctx context.Context, texts []string, onProgress ProgressFunc) ([][]float32, error) {
	vectors, errs := b.EmbedBatch(ctx, texts, onProgress)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return vectors, nil
}
