// Package request holds validated search query parameters.
package request

import (
	"fmt"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 500
	// DefaultWeight is the default text and vector fusion weight.
	DefaultWeight = 0.5
)

// Include toggles which document fields are returned with each result.
type Include struct {
	Content  bool
	Metadata bool
	Vectors  bool
}

// Search is a validated similarity or lexical search query. Exactly one of
// Query (text) or Vector is set, depending on the entry point.
type Search struct {
	query     string
	vector    []float32
	limit     int
	threshold *float64
	filter    metadata.Filter
	include   Include
}

// NewTextSearch validates a query-text search (similarity after embedding,
// or lexical). Limit defaults to 10; explicit non-positive limits other than
// zero are rejected. A nil threshold disables similarity cutoff; an explicit
// zero excludes negative-similarity hits.
func NewTextSearch(
	query string, limit int, threshold *float64, filter metadata.Filter, include Include,
) (Search, error) {
	if query == "" {
		return Search{}, fmt.Errorf("query is required: %w", domain.ErrValidation)
	}
	if len(query) > MaxQueryLength {
		return Search{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrValidation)
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return Search{}, err
	}
	return Search{
		query: query, limit: limit, threshold: threshold, filter: filter, include: include,
	}, nil
}

// NewVectorSearch validates a query-vector search. The vector length is
// checked against the store dimensions in the service layer.
func NewVectorSearch(
	vector []float32, limit int, threshold *float64, filter metadata.Filter, include Include,
) (Search, error) {
	if len(vector) == 0 {
		return Search{}, fmt.Errorf("query vector is required: %w", domain.ErrValidation)
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return Search{}, err
	}
	return Search{
		vector: vector, limit: limit, threshold: threshold, filter: filter, include: include,
	}, nil
}

// Query returns the search query text.
func (r *Search) Query() string { return r.query }

// Vector returns the query vector.
func (r *Search) Vector() []float32 { return r.vector }

// Limit returns the maximum results to return.
func (r *Search) Limit() int { return r.limit }

// Threshold returns the minimum similarity, or nil when no cutoff was
// requested. Results below it are excluded before limit truncation.
func (r *Search) Threshold() *float64 { return r.threshold }

// Filter returns the metadata pre-filter.
func (r *Search) Filter() metadata.Filter { return r.filter }

// Include returns the result field toggles.
func (r *Search) Include() Include { return r.include }

// WithVector returns a copy carrying the embedded query vector.
func (r *Search) WithVector(v []float32) Search {
	c := *r
	c.vector = v
	return c
}

// Hybrid is a validated hybrid search query fusing lexical and vector ranks.
type Hybrid struct {
	query        string
	limit        int
	textWeight   float64
	vectorWeight float64
	filter       metadata.Filter
	include      Include
	allowPartial bool
}

// NewHybrid validates hybrid search parameters. Weights default to 0.5 each
// when both are unset; they are scaling knobs and need not sum to 1.
// Negative weights are rejected.
func NewHybrid(
	query string,
	limit int,
	textWeight, vectorWeight *float64,
	filter metadata.Filter,
	include Include,
	allowPartial bool,
) (Hybrid, error) {
	if query == "" {
		return Hybrid{}, fmt.Errorf("query is required: %w", domain.ErrValidation)
	}
	if len(query) > MaxQueryLength {
		return Hybrid{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrValidation)
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return Hybrid{}, err
	}

	tw, vw := DefaultWeight, DefaultWeight
	if textWeight != nil {
		tw = *textWeight
	}
	if vectorWeight != nil {
		vw = *vectorWeight
	}
	if tw < 0 || vw < 0 {
		return Hybrid{}, fmt.Errorf("fusion weights must be non-negative: %w", domain.ErrValidation)
	}

	return Hybrid{
		query:        query,
		limit:        limit,
		textWeight:   tw,
		vectorWeight: vw,
		filter:       filter,
		include:      include,
		allowPartial: allowPartial,
	}, nil
}

// Query returns the search query text.
func (r *Hybrid) Query() string { return r.query }

// Limit returns the maximum results to return.
func (r *Hybrid) Limit() int { return r.limit }

// TextWeight returns the lexical rank scaling factor.
func (r *Hybrid) TextWeight() float64 { return r.textWeight }

// VectorWeight returns the similarity scaling factor.
func (r *Hybrid) VectorWeight() float64 { return r.vectorWeight }

// Filter returns the metadata pre-filter shared by both engines.
func (r *Hybrid) Filter() metadata.Filter { return r.filter }

// Include returns the result field toggles.
func (r *Hybrid) Include() Include { return r.include }

// AllowPartial reports whether a sub-engine failure degrades to single-mode
// results instead of failing the whole search. Default is fail closed.
func (r *Hybrid) AllowPartial() bool { return r.allowPartial }

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be >= 1, got %d: %w", limit, domain.ErrValidation)
	}
	if limit > MaxLimit {
		return MaxLimit, nil
	}
	return limit, nil
}
