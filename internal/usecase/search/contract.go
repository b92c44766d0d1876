package search

import (
	"context"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/search/result"
)

// Repository defines the ranked retrieval contract. Vector hits arrive on
// the uniform similarity scale, text hits on the backend's native rank
// scale; both ordered best-first with seq carried for tie-breaking.
type Repository interface {
	VectorTopK(
		ctx context.Context, vec []float32, k int, filter metadata.Filter, includeVectors bool,
	) ([]result.Result, error)
	TextTopK(
		ctx context.Context, query string, k int, filter metadata.Filter, includeVectors bool,
	) ([]result.Result, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
