// Package document holds the document aggregate.
package document

import (
	"fmt"
	"regexp"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is the stored unit (immutable value object).
type Document struct {
	id       string
	content  string
	metadata metadata.Map
	vector   []float32
	seq      int64
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Content: non-empty, max 160KB.
// Vector length is validated against the store dimensions in the service
// layer, not here.
func New(id, content string, meta metadata.Map, vector []float32) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	if err := ValidateContent(content); err != nil {
		return Document{}, err
	}

	return Document{
		id:       id,
		content:  content,
		metadata: meta.Clone(),
		vector:   vector,
	}, nil
}

// ValidateID checks the document identifier syntax.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required: %w", domain.ErrValidation)
	}
	if len(id) > 256 {
		return fmt.Errorf("document ID too long (max 256): %w", domain.ErrValidation)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf(
			"document ID must be alphanumeric with underscores and hyphens: %w", domain.ErrValidation,
		)
	}
	return nil
}

// ValidateContent checks the content constraints.
func ValidateContent(content string) error {
	if content == "" {
		return fmt.Errorf("content is required: %w", domain.ErrValidation)
	}
	if len(content) > MaxContentSize {
		return fmt.Errorf("content too large (max %d bytes): %w", MaxContentSize, domain.ErrValidation)
	}
	return nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, content string, meta metadata.Map, vector []float32, seq int64) Document {
	return Document{id: id, content: content, metadata: meta, vector: vector, seq: seq}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Metadata returns the metadata fields.
func (d *Document) Metadata() metadata.Map { return d.metadata }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// Seq returns the backend-assigned insertion sequence.
func (d *Document) Seq() int64 { return d.seq }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	return Document{id: d.id, content: d.content, metadata: d.metadata, vector: v, seq: d.seq}
}

// WithContent returns a copy with the given content set.
func (d *Document) WithContent(content string) Document {
	return Document{id: d.id, content: content, metadata: d.metadata, vector: d.vector, seq: d.seq}
}

// WithMetadata returns a copy with the given metadata set.
func (d *Document) WithMetadata(meta metadata.Map) Document {
	return Document{id: d.id, content: d.content, metadata: meta.Clone(), vector: d.vector, seq: d.seq}
}
