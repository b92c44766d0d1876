package document

import (
	"context"
	"testing"

	"github.com/lexivec/lexivec/internal/db"
	domdoc "github.com/lexivec/lexivec/internal/domain/document"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertRowsFn  func(ctx context.Context, rows []db.Row) error
	selectByIDFn  func(ctx context.Context, id string) (*db.Row, error)
	deleteRowFn   func(ctx context.Context, id string) error
	deleteWhereFn func(ctx context.Context, filter metadata.Filter) (int, error)
	clearFn       func(ctx context.Context) error
	countFn       func(ctx context.Context) (int, error)
}

func (m *mockStore) InsertRows(ctx context.Context, rows []db.Row) error {
	if m.insertRowsFn != nil {
		return m.insertRowsFn(ctx, rows)
	}
	return nil
}

func (m *mockStore) SelectByID(ctx context.Context, id string) (*db.Row, error) {
	if m.selectByIDFn != nil {
		return m.selectByIDFn(ctx, id)
	}
	return nil, db.ErrRowNotFound
}

func (m *mockStore) DeleteRow(ctx context.Context, id string) error {
	if m.deleteRowFn != nil {
		return m.deleteRowFn(ctx, id)
	}
	return nil
}

func (m *mockStore) DeleteWhere(ctx context.Context, filter metadata.Filter) (int, error) {
	if m.deleteWhereFn != nil {
		return m.deleteWhereFn(ctx, filter)
	}
	return 0, nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	if m.clearFn != nil {
		return m.clearFn(ctx)
	}
	return nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func testDocument(t *testing.T) domdoc.Document {
	t.Helper()
	meta := metadata.Map{"language": metadata.String("go")}
	return domdoc.Reconstruct("doc-1", "hello world", meta, testVector(4), 1)
}

func testVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i) * 0.001
	}
	return vec
}
