package lexivec

import (
	"context"
	"fmt"

	domdoc "github.com/lexivec/lexivec/internal/domain/document"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	documentuc "github.com/lexivec/lexivec/internal/usecase/document"
)

// Insert adds documents to the store and returns their IDs in input order.
// Documents without a vector are embedded from their content.
func (c *Client) Insert(ctx context.Context, docs ...Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("insert: no documents: %w", ErrValidation)
	}
	if len(docs) > c.maxBatchSize {
		return nil, fmt.Errorf("insert: batch of %d exceeds limit %d: %w",
			len(docs), c.maxBatchSize, ErrValidation)
	}

	drafts := make([]documentuc.Draft, len(docs))
	for i, d := range docs {
		meta, err := metadata.FromAnyMap(d.Metadata)
		if err != nil {
			return nil, fmt.Errorf("insert: document %d metadata: %w", i, err)
		}
		drafts[i] = documentuc.Draft{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: meta,
			Vector:   d.Vector,
		}
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	ids, err := c.docSvc.Insert(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	return ids, nil
}

// Get retrieves a document by ID.
func (c *Client) Get(ctx context.Context, id string) (Document, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	d, err := c.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// Update applies a partial update and returns the updated document.
func (c *Client) Update(ctx context.Context, id string, p Patch) (Document, error) {
	up := documentuc.Patch{Content: p.Content, Vector: p.Vector}
	if p.Metadata != nil {
		meta, err := metadata.FromAnyMap(p.Metadata)
		if err != nil {
			return Document{}, fmt.Errorf("update: metadata: %w", err)
		}
		up.Metadata = meta
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	d, err := c.docSvc.Update(ctx, id, up)
	if err != nil {
		return Document{}, fmt.Errorf("update: %w", err)
	}
	return fromInternalDocument(d), nil
}

// Delete removes a document by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.docSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// DeleteByFilter removes all documents matching the filter and returns the
// number deleted. An empty filter is rejected; use Clear to drop everything.
func (c *Client) DeleteByFilter(ctx context.Context, filter Filter) (int, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("delete by filter: empty filter (use Clear): %w", ErrValidation)
	}
	f, err := toInternalFilter(filter)
	if err != nil {
		return 0, fmt.Errorf("delete by filter: %w", err)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	n, err := c.docSvc.DeleteByFilter(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("delete by filter: %w", err)
	}
	return n, nil
}

// Clear removes all documents from the store.
func (c *Client) Clear(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.docSvc.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Stats returns document count and configured dimensions.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	s, err := c.docSvc.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{TotalDocuments: s.TotalDocuments, Dimensions: s.Dimensions}, nil
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:       d.ID(),
		Content:  d.Content(),
		Metadata: d.Metadata().ToAnyMap(),
		Vector:   d.Vector(),
	}
}
