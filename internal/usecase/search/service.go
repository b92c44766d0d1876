package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/search/request"
	"github.com/lexivec/lexivec/internal/domain/search/result"
	"github.com/lexivec/lexivec/internal/metrics"
)

// Service handles similarity, lexical, and hybrid document search.
type Service struct {
	repo   Repository
	embed  Embedder
	cfg    domain.StoreConfig
	logger *zap.Logger
}

// New creates a search service.
func New(repo Repository, embed Embedder, cfg domain.StoreConfig, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, cfg: cfg, logger: logger}
}

// Search embeds the query text and runs a similarity search.
func (s *Service) Search(ctx context.Context, req *request.Search) ([]result.Result, error) {
	embRes, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	vreq := req.WithVector(embRes.Embedding)
	return s.SearchByVector(ctx, &vreq)
}

// SearchByVector runs a nearest-neighbor search over the query vector.
// Results are ordered by similarity descending, ties broken by insertion
// sequence; the threshold applies before limit truncation.
func (s *Service) SearchByVector(ctx context.Context, req *request.Search) (_ []result.Result, err error) {
	defer observeSearch("vector", time.Now(), &err)

	if len(req.Vector()) != s.cfg.Dimensions {
		return nil, fmt.Errorf(
			"query vector dimension mismatch: got %d, want %d: %w",
			len(req.Vector()), s.cfg.Dimensions, domain.ErrDimensionMismatch,
		)
	}

	hits, err := s.repo.VectorTopK(
		ctx, req.Vector(), req.Limit(), req.Filter(), req.Include().Vectors,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	// A set threshold always applies, including zero: similarity is
	// negative for opposed vectors under the cosine and dot metrics.
	if cutoff := req.Threshold(); cutoff != nil {
		kept := hits[:0]
		for _, h := range hits {
			if h.Similarity() >= *cutoff {
				kept = append(kept, h)
			}
		}
		hits = kept
	}

	sortBySimilarity(hits)

	if len(hits) > req.Limit() {
		hits = hits[:req.Limit()]
	}
	return s.trimFields(hits, req.Include()), nil
}

// SearchLexical runs a full-text search over document content. Results are
// ordered by text rank descending, ties broken by insertion sequence.
func (s *Service) SearchLexical(ctx context.Context, req *request.Search) (_ []result.Result, err error) {
	defer observeSearch("lexical", time.Now(), &err)

	hits, err := s.repo.TextTopK(ctx, req.Query(), req.Limit(), req.Filter(), req.Include().Vectors)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	sortByTextRank(hits)

	if len(hits) > req.Limit() {
		hits = hits[:req.Limit()]
	}
	return s.trimFields(hits, req.Include()), nil
}

// HybridSearch runs both engines over the same filter and fuses the two
// rankings by weighted sum. Fails closed on sub-engine errors unless the
// request opts into partial results; a failed embed never degrades.
func (s *Service) HybridSearch(ctx context.Context, req *request.Hybrid) (_ []result.Result, err error) {
	defer observeSearch("hybrid", time.Now(), &err)

	embRes, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(embRes.Embedding) != s.cfg.Dimensions {
		return nil, fmt.Errorf(
			"embedded query dimension mismatch: got %d, want %d: %w",
			len(embRes.Embedding), s.cfg.Dimensions, domain.ErrDimensionMismatch,
		)
	}

	textHits, textErr := s.repo.TextTopK(ctx, req.Query(), req.Limit(), req.Filter(), req.Include().Vectors)
	if textErr != nil {
		if !req.AllowPartial() {
			return nil, fmt.Errorf("lexical search: %w", textErr)
		}
		s.logger.Warn("Hybrid search degraded: lexical engine failed", zap.Error(textErr))
		textHits = nil
	}

	vecHits, vecErr := s.repo.VectorTopK(
		ctx, embRes.Embedding, req.Limit(), req.Filter(), req.Include().Vectors,
	)
	if vecErr != nil {
		if !req.AllowPartial() {
			return nil, fmt.Errorf("vector search: %w", vecErr)
		}
		s.logger.Warn("Hybrid search degraded: vector engine failed", zap.Error(vecErr))
		vecHits = nil
	}
	if textErr != nil && vecErr != nil {
		return nil, fmt.Errorf("both engines failed: lexical: %w; vector: %w", textErr, vecErr)
	}

	fused := fuseWeighted(textHits, vecHits, req.TextWeight(), req.VectorWeight())
	if len(fused) > req.Limit() {
		fused = fused[:req.Limit()]
	}
	return s.trimFields(fused, req.Include()), nil
}

// trimFields strips document fields the request did not ask for.
func (s *Service) trimFields(hits []result.Result, inc request.Include) []result.Result {
	for i := range hits {
		content := hits[i].Content()
		meta := hits[i].Metadata()
		vec := hits[i].Vector()
		if !inc.Content {
			content = ""
		}
		if !inc.Metadata {
			meta = nil
		}
		if !inc.Vectors {
			vec = nil
		}
		hits[i] = hits[i].WithDocument(content, meta, vec)
	}
	return hits
}

// observeSearch records one search request in the mode counters.
func observeSearch(mode string, start time.Time, err *error) {
	status := "success"
	if *err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(mode, status).Inc()
	metrics.SearchRequestDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func sortBySimilarity(hits []result.Result) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity() != hits[j].Similarity() {
			return hits[i].Similarity() > hits[j].Similarity()
		}
		return hits[i].Seq() < hits[j].Seq()
	})
}

func sortByTextRank(hits []result.Result) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].TextRank() != hits[j].TextRank() {
			return hits[i].TextRank() > hits[j].TextRank()
		}
		return hits[i].Seq() < hits[j].Seq()
	})
}
