package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/domain"
	domdoc "github.com/lexivec/lexivec/internal/domain/document"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// Service handles document CRUD with automatic vectorization.
type Service struct {
	repo     Repository
	embedder Embedder
	cfg      domain.StoreConfig
	logger   *zap.Logger
}

// New creates a document service.
func New(repo Repository, embedder Embedder, cfg domain.StoreConfig, logger *zap.Logger) *Service {
	return &Service{repo: repo, embedder: embedder, cfg: cfg, logger: logger}
}

// Insert validates and persists a batch of documents. The whole batch lands
// or nothing does: validation runs before any external call, drafts without
// vectors are embedded in a single batch call, and persistence is one
// backend call. Returns the document ids in input order.
func (s *Service) Insert(ctx context.Context, drafts []Draft) ([]string, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	docs := make([]domdoc.Document, len(drafts))
	pending := make([]int, 0, len(drafts))
	texts := make([]string, 0, len(drafts))

	for i, d := range drafts {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		doc, err := domdoc.New(id, d.Content, d.Metadata, d.Vector)
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		if d.Vector != nil {
			if err := s.checkDimensions(len(d.Vector)); err != nil {
				return nil, fmt.Errorf("draft %d: %w", i, err)
			}
		} else {
			pending = append(pending, i)
			texts = append(texts, d.Content)
		}
		docs[i] = doc
	}

	if len(texts) > 0 {
		res, err := domain.BatchEmbed(ctx, s.embedder, texts)
		if err != nil {
			return nil, fmt.Errorf("vectorize batch: %w", err)
		}
		for j, idx := range pending {
			vec := res.Embeddings[j]
			if err := s.checkDimensions(len(vec)); err != nil {
				return nil, fmt.Errorf("draft %d: embedded %w", idx, err)
			}
			docs[idx] = docs[idx].WithVector(vec)
		}
	}

	if err := s.repo.InsertBatch(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID()
	}
	return ids, nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update applies a partial update. A content change without an explicit
// vector re-embeds; metadata-only updates never touch the provider.
func (s *Service) Update(ctx context.Context, id string, p Patch) (domdoc.Document, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}

	updated := current
	contentChanged := false
	if p.Content != nil && *p.Content != current.Content() {
		updated = updated.WithContent(*p.Content)
		contentChanged = true
	}
	if p.Metadata != nil {
		updated = updated.WithMetadata(p.Metadata)
	}

	switch {
	case p.Vector != nil:
		if err := s.checkDimensions(len(p.Vector)); err != nil {
			return domdoc.Document{}, err
		}
		updated = updated.WithVector(p.Vector)
	case contentChanged:
		res, err := s.embedder.Embed(ctx, updated.Content())
		if err != nil {
			return domdoc.Document{}, fmt.Errorf("vectorize updated content: %w", err)
		}
		if err := s.checkDimensions(len(res.Embedding)); err != nil {
			return domdoc.Document{}, fmt.Errorf("embedded %w", err)
		}
		updated = updated.WithVector(res.Embedding)
	}

	if err := domdoc.ValidateContent(updated.Content()); err != nil {
		return domdoc.Document{}, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}
	return updated, nil
}

// Delete removes a document. Missing ids return ErrDocumentNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// DeleteByFilter removes every matching document and returns the count.
func (s *Service) DeleteByFilter(ctx context.Context, filter metadata.Filter) (int, error) {
	n, err := s.repo.DeleteByFilter(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete by filter: %w", err)
	}
	return n, nil
}

// Clear removes all documents.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

// Stats reports store totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count documents: %w", err)
	}
	return Stats{TotalDocuments: n, Dimensions: s.cfg.Dimensions}, nil
}

// checkDimensions verifies a vector length against the store configuration.
func (s *Service) checkDimensions(got int) error {
	if got != s.cfg.Dimensions {
		return fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			got, s.cfg.Dimensions, domain.ErrDimensionMismatch,
		)
	}
	return nil
}
