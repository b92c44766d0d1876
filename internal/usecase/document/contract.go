package document

import (
	"context"

	"github.com/lexivec/lexivec/internal/domain"
	domdoc "github.com/lexivec/lexivec/internal/domain/document"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// Repository defines the storage contract for documents.
type Repository interface {
	InsertBatch(ctx context.Context, docs []domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Update(ctx context.Context, doc domdoc.Document) error
	Delete(ctx context.Context, id string) error
	DeleteByFilter(ctx context.Context, filter metadata.Filter) (int, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Draft is one document to insert. ID and Vector are optional: a missing ID
// gets a generated UUID, a missing Vector is produced by the embedder.
type Draft struct {
	ID       string
	Content  string
	Metadata metadata.Map
	Vector   []float32
}

// Patch is a partial document update. Nil fields mean "leave unchanged".
type Patch struct {
	Content  *string
	Metadata metadata.Map
	Vector   []float32
}

// Stats summarizes the store.
type Stats struct {
	TotalDocuments int64
	Dimensions     int
}
