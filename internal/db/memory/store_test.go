package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	err := s.CreateSchema(context.Background(), &db.SchemaDefinition{
		Name:       "docs",
		Dimensions: 3,
		Metric:     vector.Cosine,
	})
	if err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	return s
}

func insertRows(t *testing.T, s *Store, rows ...db.Row) {
	t.Helper()
	if err := s.InsertRows(context.Background(), rows); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
}

func mustEq(t *testing.T, path string, v metadata.Value) metadata.Condition {
	t.Helper()
	c, err := metadata.Eq(path, v)
	if err != nil {
		t.Fatalf("Eq: %v", err)
	}
	return c
}

func mustFilter(t *testing.T, conds ...metadata.Condition) metadata.Filter {
	t.Helper()
	f, err := metadata.NewFilter(conds...)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	return f
}

func TestRowRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	meta := metadata.Map{"lang": metadata.String("en")}
	insertRows(t, s, db.Row{ID: "a", Content: "cat", Meta: meta, Vector: []float32{1, 0, 0}})

	row, err := s.SelectByID(ctx, "a")
	if err != nil {
		t.Fatalf("SelectByID: %v", err)
	}
	if row.Content != "cat" {
		t.Errorf("content = %q", row.Content)
	}
	if !metadata.Object(row.Meta).Equal(metadata.Object(meta)) {
		t.Errorf("meta = %v", row.Meta)
	}
	for i, want := range []float32{1, 0, 0} {
		if row.Vector[i] != want {
			t.Errorf("vector[%d] = %f, want %f", i, row.Vector[i], want)
		}
	}
	if row.Seq == 0 {
		t.Error("seq not assigned")
	}
}

func TestSelectMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SelectByID(context.Background(), "nope"); !errors.Is(err, db.ErrRowNotFound) {
		t.Errorf("got %v, want ErrRowNotFound", err)
	}
}

func TestUpsertKeepsSeq(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertRows(t, s, db.Row{ID: "a", Content: "one", Vector: []float32{1, 0, 0}})
	first, _ := s.SelectByID(ctx, "a")

	insertRows(t, s, db.Row{ID: "a", Content: "two", Vector: []float32{0, 1, 0}})
	second, _ := s.SelectByID(ctx, "a")

	if second.Seq != first.Seq {
		t.Errorf("seq changed on upsert: %d -> %d", first.Seq, second.Seq)
	}
	if second.Content != "two" {
		t.Errorf("content = %q", second.Content)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestVectorTopKOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Increasing cosine distance from [1,0,0].
	insertRows(t, s,
		db.Row{ID: "far", Content: "far", Vector: []float32{0, 1, 0}},
		db.Row{ID: "near", Content: "near", Vector: []float32{1, 0.1, 0}},
		db.Row{ID: "exact", Content: "exact", Vector: []float32{1, 0, 0}},
	)

	res, err := s.VectorTopK(ctx, &db.VectorQuery{Vector: []float32{1, 0, 0}, K: 3})
	if err != nil {
		t.Fatalf("VectorTopK: %v", err)
	}

	want := []string{"exact", "near", "far"}
	if len(res.Entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(res.Entries), len(want))
	}
	for i, id := range want {
		if res.Entries[i].ID != id {
			t.Errorf("entry[%d] = %s, want %s", i, res.Entries[i].ID, id)
		}
	}
}

func TestVectorTopKTiesByInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Same vector: identical distance, first inserted wins.
	insertRows(t, s,
		db.Row{ID: "first", Content: "x", Vector: []float32{0, 1, 0}},
		db.Row{ID: "second", Content: "x", Vector: []float32{0, 1, 0}},
	)

	res, err := s.VectorTopK(ctx, &db.VectorQuery{Vector: []float32{1, 0, 0}, K: 2})
	if err != nil {
		t.Fatalf("VectorTopK: %v", err)
	}
	if res.Entries[0].ID != "first" || res.Entries[1].ID != "second" {
		t.Errorf("tie break by insertion order violated: %s, %s",
			res.Entries[0].ID, res.Entries[1].ID)
	}
}

func TestVectorTopKFilterAppliedBeforeRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertRows(t, s,
		db.Row{ID: "a", Content: "x", Vector: []float32{1, 0, 0},
			Meta: metadata.Map{"lang": metadata.String("en")}},
		db.Row{ID: "b", Content: "x", Vector: []float32{1, 0, 0},
			Meta: metadata.Map{"lang": metadata.String("fr")}},
	)

	f := mustFilter(t, mustEq(t, "lang", metadata.String("fr")))
	res, err := s.VectorTopK(ctx, &db.VectorQuery{Vector: []float32{1, 0, 0}, K: 1, Filter: f})
	if err != nil {
		t.Fatalf("VectorTopK: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].ID != "b" {
		t.Errorf("entries = %+v, want only b", res.Entries)
	}
}

func TestTextTopK(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertRows(t, s,
		db.Row{ID: "a", Content: "the cat sat on the cat mat", Vector: []float32{1, 0, 0}},
		db.Row{ID: "b", Content: "a dog", Vector: []float32{0, 1, 0}},
		db.Row{ID: "c", Content: "cat", Vector: []float32{0, 0, 1}},
	)

	res, err := s.TextTopK(ctx, &db.TextQuery{Query: "cat", K: 10})
	if err != nil {
		t.Fatalf("TextTopK: %v", err)
	}

	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2 (dog doc excluded)", len(res.Entries))
	}
	// "c" is an exact match (tf 1/1), "a" has 2 hits in 7 tokens.
	if res.Entries[0].ID != "c" {
		t.Errorf("top hit = %s, want c", res.Entries[0].ID)
	}
	for _, e := range res.Entries {
		if e.Score <= 0 {
			t.Errorf("entry %s has non-positive rank %f", e.ID, e.Score)
		}
		if e.Vector != nil {
			t.Errorf("entry %s carries a vector without IncludeVector", e.ID)
		}
	}
}

func TestTextTopKIncludeVector(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertRows(t, s,
		db.Row{ID: "a", Content: "cat", Vector: []float32{1, 0, 0}},
	)

	res, err := s.TextTopK(ctx, &db.TextQuery{Query: "cat", K: 10, IncludeVector: true})
	if err != nil {
		t.Fatalf("TextTopK: %v", err)
	}
	if len(res.Entries) != 1 || len(res.Entries[0].Vector) != 3 {
		t.Errorf("entries = %+v, want one entry carrying its vector", res.Entries)
	}
}

func TestDeleteWhere(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertRows(t, s,
		db.Row{ID: "a", Content: "x", Vector: []float32{1, 0, 0},
			Meta: metadata.Map{"lang": metadata.String("en")}},
		db.Row{ID: "b", Content: "x", Vector: []float32{1, 0, 0},
			Meta: metadata.Map{"lang": metadata.String("en")}},
		db.Row{ID: "c", Content: "x", Vector: []float32{1, 0, 0},
			Meta: metadata.Map{"lang": metadata.String("fr")}},
	)

	n, err := s.DeleteWhere(ctx, mustFilter(t, mustEq(t, "lang", metadata.String("en"))))
	if err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if count, _ := s.Count(ctx); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestDeleteRowMissing(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteRow(context.Background(), "nope"); !errors.Is(err, db.ErrRowNotFound) {
		t.Errorf("got %v, want ErrRowNotFound", err)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertRows(t, s, db.Row{ID: "a", Content: "x", Vector: []float32{1, 0, 0}})

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestKVWithTTL(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.SetWithTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if v, err := s.Get(ctx, "k"); err != nil || v != "v" {
		t.Fatalf("Get before expiry: %q, %v", v, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("Get after expiry: got %v, want ErrKeyNotFound", err)
	}
}

func TestIncrBy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if n, err := s.IncrBy(ctx, "seq", 1); err != nil || n != 1 {
		t.Fatalf("first IncrBy: %d, %v", n, err)
	}
	if n, err := s.IncrBy(ctx, "seq", 5); err != nil || n != 6 {
		t.Fatalf("second IncrBy: %d, %v", n, err)
	}
}
