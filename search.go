package lexivec

import (
	"context"
	"fmt"

	"github.com/lexivec/lexivec/internal/domain/search/request"
	"github.com/lexivec/lexivec/internal/domain/search/result"
)

// SearchOptions configures a vector or lexical search query. A nil
// Threshold disables the similarity cutoff; an explicit zero still excludes
// negative-similarity hits. IncludeContent and IncludeMetadata default to
// true when nil.
type SearchOptions struct {
	Limit           int
	Threshold       *float64
	Filter          Filter
	IncludeContent  *bool
	IncludeMetadata *bool
	IncludeVectors  bool
}

// HybridOptions configures a hybrid search query. Nil weights default
// to 0.5 each; weights are scaling knobs and need not sum to 1.
// IncludeContent and IncludeMetadata default to true when nil.
type HybridOptions struct {
	Limit           int
	TextWeight      *float64
	VectorWeight    *float64
	Filter          Filter
	AllowPartial    bool
	IncludeContent  *bool
	IncludeMetadata *bool
	IncludeVectors  bool
}

// Search embeds the query text and runs a vector similarity search.
// Results are ordered by similarity descending; Score is the similarity.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) ([]SearchResult, error) {
	req, err := textRequest(query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	results, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromSearchResults(results, (*result.Result).Similarity), nil
}

// SearchVector runs a nearest-neighbor search over a caller-supplied vector.
func (c *Client) SearchVector(ctx context.Context, vec []float32, opts *SearchOptions) ([]SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	f, err := toInternalFilter(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	req, err := request.NewVectorSearch(
		vec, opts.Limit, opts.Threshold, f,
		includeFor(opts.IncludeContent, opts.IncludeMetadata, opts.IncludeVectors),
	)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	results, err := c.searchSvc.SearchByVector(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return fromSearchResults(results, (*result.Result).Similarity), nil
}

// SearchLexical runs a full-text search over document content.
// Results are ordered by text rank descending; Score is the text rank.
// Threshold is ignored for lexical search.
func (c *Client) SearchLexical(ctx context.Context, query string, opts *SearchOptions) ([]SearchResult, error) {
	req, err := textRequest(query, opts)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	results, err := c.searchSvc.SearchLexical(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return fromSearchResults(results, (*result.Result).TextRank), nil
}

// SearchHybrid runs lexical and vector search over the same filter and
// fuses the rankings by weighted sum. Score is the fused score.
func (c *Client) SearchHybrid(ctx context.Context, query string, opts *HybridOptions) ([]SearchResult, error) {
	if opts == nil {
		opts = &HybridOptions{}
	}
	f, err := toInternalFilter(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	req, err := request.NewHybrid(
		query, opts.Limit, opts.TextWeight, opts.VectorWeight,
		f, includeFor(opts.IncludeContent, opts.IncludeMetadata, opts.IncludeVectors), opts.AllowPartial,
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	results, err := c.searchSvc.HybridSearch(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return fromSearchResults(results, (*result.Result).FusedScore), nil
}

func textRequest(query string, opts *SearchOptions) (request.Search, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	f, err := toInternalFilter(opts.Filter)
	if err != nil {
		return request.Search{}, err
	}
	return request.NewTextSearch(
		query, opts.Limit, opts.Threshold, f,
		includeFor(opts.IncludeContent, opts.IncludeMetadata, opts.IncludeVectors),
	)
}

func includeFor(content, meta *bool, vectors bool) request.Include {
	inc := request.Include{Content: true, Metadata: true, Vectors: vectors}
	if content != nil {
		inc.Content = *content
	}
	if meta != nil {
		inc.Metadata = *meta
	}
	return inc
}

func fromSearchResults(results []result.Result, score func(*result.Result) float64) []SearchResult {
	out := make([]SearchResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = SearchResult{
			ID:         r.ID(),
			Score:      score(r),
			Similarity: r.Similarity(),
			TextRank:   r.TextRank(),
			Content:    r.Content(),
			Metadata:   r.Metadata().ToAnyMap(),
			Vector:     r.Vector(),
		}
	}
	return out
}
