package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

func TestVectorTopK_CosineSimilarityScale(t *testing.T) {
	repo, ms := newTestRepo(t, vector.Cosine)

	ms.vectorTopKFn = func(_ context.Context, q *db.VectorQuery) (*db.TopKResult, error) {
		if q.K != 5 {
			t.Errorf("expected k=5, got %d", q.K)
		}
		return &db.TopKResult{Entries: []db.TopKEntry{
			{ID: "exact", Score: 0, Seq: 1},
			{ID: "orthogonal", Score: 1, Seq: 2},
			{ID: "opposite", Score: 2, Seq: 3},
		}}, nil
	}

	hits, err := repo.VectorTopK(context.Background(), []float32{1, 0}, 5, metadata.Filter{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}

	wants := []float64{1, 0, -1}
	for i, want := range wants {
		if math.Abs(hits[i].Similarity()-want) > 1e-9 {
			t.Errorf("hit %d: similarity %v, want %v", i, hits[i].Similarity(), want)
		}
	}
}

func TestVectorTopK_L2SimilarityScale(t *testing.T) {
	repo, ms := newTestRepo(t, vector.L2)

	ms.vectorTopKFn = func(_ context.Context, _ *db.VectorQuery) (*db.TopKResult, error) {
		return &db.TopKResult{Entries: []db.TopKEntry{
			{ID: "identical", Score: 0},
			{ID: "unit-apart", Score: 1},
		}}, nil
	}

	hits, err := repo.VectorTopK(context.Background(), []float32{1, 0}, 2, metadata.Filter{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hits[0].Similarity(); got != 1 {
		t.Errorf("identical vectors: similarity %v, want 1", got)
	}
	if got := hits[1].Similarity(); got != 0.5 {
		t.Errorf("distance 1: similarity %v, want 0.5", got)
	}
}

func TestVectorTopK_CarriesDocumentFields(t *testing.T) {
	repo, ms := newTestRepo(t, vector.Cosine)

	meta := metadata.Map{"lang": metadata.String("go")}
	ms.vectorTopKFn = func(_ context.Context, _ *db.VectorQuery) (*db.TopKResult, error) {
		return &db.TopKResult{Entries: []db.TopKEntry{
			{ID: "doc-1", Score: 0.25, Content: "hello", Meta: meta, Vector: []float32{1, 0}, Seq: 9},
		}}, nil
	}

	hits, err := repo.VectorTopK(context.Background(), []float32{1, 0}, 1, metadata.Filter{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := hits[0]
	if h.Content() != "hello" {
		t.Errorf("unexpected content: %s", h.Content())
	}
	if h.Seq() != 9 {
		t.Errorf("unexpected seq: %d", h.Seq())
	}
	if len(h.Vector()) != 2 {
		t.Errorf("expected vector carried, got %v", h.Vector())
	}
}

func TestVectorTopK_FilterNotIndexed(t *testing.T) {
	repo, ms := newTestRepo(t, vector.Cosine)

	ms.vectorTopKFn = func(_ context.Context, _ *db.VectorQuery) (*db.TopKResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrFilterNotIndexed}
	}

	_, err := repo.VectorTopK(context.Background(), []float32{1, 0}, 1, metadata.Filter{}, false)
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestTextTopK_RanksAndSeq(t *testing.T) {
	repo, ms := newTestRepo(t, vector.Cosine)

	ms.textTopKFn = func(_ context.Context, q *db.TextQuery) (*db.TopKResult, error) {
		if q.Query != "hello" {
			t.Errorf("unexpected query: %s", q.Query)
		}
		return &db.TopKResult{Entries: []db.TopKEntry{
			{ID: "a", Score: 2.5, Content: "hello hello", Seq: 1},
			{ID: "b", Score: 1.0, Content: "hello", Seq: 2},
		}}, nil
	}

	hits, err := repo.TextTopK(context.Background(), "hello", 10, metadata.Filter{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].TextRank() != 2.5 {
		t.Errorf("unexpected rank: %v", hits[0].TextRank())
	}
	if hits[0].Similarity() != 0 {
		t.Errorf("text hits must not carry similarity, got %v", hits[0].Similarity())
	}
	if hits[1].Seq() != 2 {
		t.Errorf("unexpected seq: %d", hits[1].Seq())
	}
}

func TestTextTopK_CarriesVector(t *testing.T) {
	repo, ms := newTestRepo(t, vector.Cosine)

	ms.textTopKFn = func(_ context.Context, q *db.TextQuery) (*db.TopKResult, error) {
		if !q.IncludeVector {
			t.Error("vector inclusion must reach the backend query")
		}
		return &db.TopKResult{Entries: []db.TopKEntry{
			{ID: "a", Score: 1.5, Content: "hello", Vector: []float32{1, 0}, Seq: 1},
		}}, nil
	}

	hits, err := repo.TextTopK(context.Background(), "hello", 10, metadata.Filter{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits[0].Vector()) != 2 {
		t.Errorf("expected vector carried, got %v", hits[0].Vector())
	}
}

func TestTextTopK_Empty(t *testing.T) {
	repo, ms := newTestRepo(t, vector.Cosine)

	ms.textTopKFn = func(_ context.Context, _ *db.TextQuery) (*db.TopKResult, error) {
		return &db.TopKResult{}, nil
	}

	hits, err := repo.TextTopK(context.Background(), "nothing", 10, metadata.Filter{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}
