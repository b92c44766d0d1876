package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain"
	domdoc "github.com/lexivec/lexivec/internal/domain/document"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// store is the consumer interface for document persistence (ISP).
type store interface {
	InsertRows(ctx context.Context, rows []db.Row) error
	SelectByID(ctx context.Context, id string) (*db.Row, error)
	DeleteRow(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter metadata.Filter) (int, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// InsertBatch persists a batch of documents in a single backend call so
// the batch lands atomically or not at all.
func (r *Repo) InsertBatch(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]db.Row, len(docs))
	for i, doc := range docs {
		rows[i] = rowFromDocument(doc)
	}
	if err := r.store.InsertRows(ctx, rows); err != nil {
		return domain.WrapTimeout("insert batch", err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	row, err := r.store.SelectByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, domain.WrapTimeout(fmt.Sprintf("get %s", id), err)
	}
	return documentFromRow(*row)
}

// Update overwrites an existing document, keeping its insertion sequence.
func (r *Repo) Update(ctx context.Context, doc domdoc.Document) error {
	if err := r.store.InsertRows(ctx, []db.Row{rowFromDocument(doc)}); err != nil {
		return domain.WrapTimeout(fmt.Sprintf("update %s", doc.ID()), err)
	}
	return nil
}

// Delete removes a document by ID.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteRow(ctx, id); err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return domain.ErrDocumentNotFound
		}
		return domain.WrapTimeout(fmt.Sprintf("delete %s", id), err)
	}
	return nil
}

// DeleteByFilter removes every document matching the filter and returns
// how many were removed.
func (r *Repo) DeleteByFilter(ctx context.Context, filter metadata.Filter) (int, error) {
	n, err := r.store.DeleteWhere(ctx, filter)
	if err != nil {
		if errors.Is(err, db.ErrFilterNotIndexed) {
			return 0, fmt.Errorf("delete by filter: %w: %w", domain.ErrInvalidFilter, err)
		}
		return 0, domain.WrapTimeout("delete by filter", err)
	}
	return n, nil
}

// Clear removes all documents.
func (r *Repo) Clear(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return domain.WrapTimeout("clear", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.store.Count(ctx)
	if err != nil {
		return 0, domain.WrapTimeout("count", err)
	}
	return int64(n), nil
}
