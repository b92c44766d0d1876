package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		content string
		wantErr bool
	}{
		{"valid", "doc-1", "hello", false},
		{"valid with underscore", "doc_1", "hello", false},
		{"empty id", "", "hello", true},
		{"id too long", strings.Repeat("a", 257), "hello", true},
		{"id with spaces", "doc 1", "hello", true},
		{"id with slash", "a/b", "hello", true},
		{"empty content", "doc-1", "", true},
		{"content too large", "doc-1", strings.Repeat("x", MaxContentSize+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.content, nil, nil)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("got %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMetadataIsCloned(t *testing.T) {
	meta := metadata.Map{"lang": metadata.String("en")}
	doc, err := New("doc-1", "hello", meta, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	meta["lang"] = metadata.String("fr")
	if got := doc.Metadata()["lang"]; !got.Equal(metadata.String("en")) {
		t.Error("document metadata must not alias the caller's map")
	}
}

func TestWithVector(t *testing.T) {
	doc := Reconstruct("doc-1", "hello", nil, nil, 7)
	v := []float32{1, 2, 3}

	updated := doc.WithVector(v)
	if len(doc.Vector()) != 0 {
		t.Error("original document mutated")
	}
	if len(updated.Vector()) != 3 || updated.Seq() != 7 {
		t.Errorf("copy lost fields: vector=%v seq=%d", updated.Vector(), updated.Seq())
	}
}
