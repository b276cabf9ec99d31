package services

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Default rate limit for embedding calls, batches per second.
const (
	defaultEmbedRate  = 5
	defaultEmbedBurst = 5
)

// EmbeddingGateway wraps an embedding service with rate limiting and
// graceful degradation: a failed batch becomes same-length empty
// vectors instead of an error, so ingestion always completes.
type EmbeddingGateway struct {
	service driven.EmbeddingService
	limiter *rate.Limiter
}

// NewEmbeddingGateway creates a gateway around the given service.
// The service may be nil, in which case every batch degrades to empty
// vectors.
func NewEmbeddingGateway(service driven.EmbeddingService) *EmbeddingGateway {
	return &EmbeddingGateway{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(defaultEmbedRate), defaultEmbedBurst),
	}
}

// Available reports whether a real embedding service is configured.
func (g *EmbeddingGateway) Available() bool {
	return g != nil && g.service != nil
}

// EmbedBatch embeds the texts, degrading failures to empty vectors.
// The result always has the same length as the input.
func (g *EmbeddingGateway) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return nil
	}

	empty := make([][]float32, len(texts))
	if !g.Available() {
		return empty
	}

	if err := g.limiter.Wait(ctx); err != nil {
		logger.Warn("Embedding rate limit wait aborted: %v", err)
		return empty
	}

	vectors, err := g.service.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding batch failed, storing empty vectors: %v", err)
		return empty
	}
	if len(vectors) != len(texts) {
		logger.Warn("Embedding batch returned %d vectors for %d texts, storing empty vectors",
			len(vectors), len(texts))
		return empty
	}

	return vectors
}

// EmbedQuery embeds a single query string. Unlike EmbedBatch this
// surfaces the failure, because retrieval cannot proceed without a
// query vector.
func (g *EmbeddingGateway) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if !g.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	vectors, err := g.service.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return vectors[0], nil
}
