package search

import (
	"context"
	"testing"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	vectorTopKFn func(ctx context.Context, q *db.VectorQuery) (*db.TopKResult, error)
	textTopKFn   func(ctx context.Context, q *db.TextQuery) (*db.TopKResult, error)
}

func (m *mockStore) VectorTopK(ctx context.Context, q *db.VectorQuery) (*db.TopKResult, error) {
	if m.vectorTopKFn != nil {
		return m.vectorTopKFn(ctx, q)
	}
	return &db.TopKResult{}, nil
}

func (m *mockStore) TextTopK(ctx context.Context, q *db.TextQuery) (*db.TopKResult, error) {
	if m.textTopKFn != nil {
		return m.textTopKFn(ctx, q)
	}
	return &db.TopKResult{}, nil
}

func newTestRepo(t *testing.T, metric vector.Metric) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, metric), ms
}
