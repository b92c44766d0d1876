package lexivec

import "github.com/lexivec/lexivec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrEmbeddingProvider = domain.ErrEmbeddingProvider
	ErrTimeout           = domain.ErrTimeout
	ErrInvalidFilter     = domain.ErrInvalidFilter
	ErrValidation        = domain.ErrValidation
)
