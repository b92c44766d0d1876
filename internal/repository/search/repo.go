// Package search adapts the storage search primitives to domain results.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/search/result"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	VectorTopK(ctx context.Context, q *db.VectorQuery) (*db.TopKResult, error)
	TextTopK(ctx context.Context, q *db.TextQuery) (*db.TopKResult, error)
}

// Repo implements usecase/search.Repository. It converts backend distances
// to the uniform higher-is-better similarity scale for the configured
// metric.
type Repo struct {
	store  store
	metric vector.Metric
}

// New creates a search repository.
func New(s store, metric vector.Metric) *Repo {
	return &Repo{store: s, metric: metric}
}

// VectorTopK performs a nearest-neighbor search and returns hits ordered
// by similarity descending.
func (r *Repo) VectorTopK(
	ctx context.Context, vec []float32, k int, filter metadata.Filter, includeVectors bool,
) ([]result.Result, error) {
	q := &db.VectorQuery{
		Vector:        vec,
		K:             k,
		Filter:        filter,
		IncludeVector: includeVectors,
	}

	tr, err := r.store.VectorTopK(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrFilterNotIndexed) {
			return nil, fmt.Errorf("vector search: %w: %w", domain.ErrInvalidFilter, err)
		}
		return nil, domain.WrapTimeout("vector search", err)
	}

	return r.parseVectorHits(tr), nil
}

// TextTopK performs a lexical search and returns hits ordered by text
// rank descending.
func (r *Repo) TextTopK(
	ctx context.Context, query string, k int, filter metadata.Filter, includeVectors bool,
) ([]result.Result, error) {
	q := &db.TextQuery{
		Query:         query,
		K:             k,
		Filter:        filter,
		IncludeVector: includeVectors,
	}

	tr, err := r.store.TextTopK(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrFilterNotIndexed) {
			return nil, fmt.Errorf("text search: %w: %w", domain.ErrInvalidFilter, err)
		}
		return nil, domain.WrapTimeout("text search", err)
	}

	return parseTextHits(tr), nil
}

// parseVectorHits converts raw distance entries into domain results on the
// similarity scale.
func (r *Repo) parseVectorHits(tr *db.TopKResult) []result.Result {
	if tr == nil || len(tr.Entries) == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(tr.Entries))
	for _, entry := range tr.Entries {
		sim := vector.SimilarityFromDistance(r.metric, entry.Score)
		res := result.New(entry.ID, sim, 0, 0, entry.Seq)
		res = res.WithDocument(entry.Content, entry.Meta, entry.Vector)
		results = append(results, res)
	}
	return results
}

// parseTextHits converts rank entries into domain results. Text ranks stay
// on the backend's native non-negative scale.
func parseTextHits(tr *db.TopKResult) []result.Result {
	if tr == nil || len(tr.Entries) == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(tr.Entries))
	for _, entry := range tr.Entries {
		res := result.New(entry.ID, 0, entry.Score, 0, entry.Seq)
		res = res.WithDocument(entry.Content, entry.Meta, entry.Vector)
		results = append(results, res)
	}
	return results
}
