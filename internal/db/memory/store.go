// Package memory implements db.Store with an in-process exact scan.
// It is the embedded driver and the test double for the Redis driver.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type kvEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Store holds all rows in process memory. Every filter condition is
// evaluated with full metadata semantics; no schema declaration is needed.
type Store struct {
	mu     sync.RWMutex
	schema *db.SchemaDefinition
	rows   map[string]db.Row
	kv     map[string]kvEntry
	seq    int64
	now    func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		rows: make(map[string]db.Row),
		kv:   make(map[string]kvEntry),
		now:  time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close releases nothing; present to satisfy db.Store.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// CreateSchema records the schema. Recreating an existing schema fails.
func (s *Store) CreateSchema(_ context.Context, def *db.SchemaDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateSchema, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema != nil && s.schema.Name == def.Name {
		return db.ErrSchemaExists
	}
	cp := *def
	s.schema = &cp
	return nil
}

// DropSchema removes the schema and all rows.
func (s *Store) DropSchema(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil || s.schema.Name != name {
		return db.ErrSchemaNotFound
	}
	s.schema = nil
	s.rows = make(map[string]db.Row)
	return nil
}

// SchemaExists reports whether the named schema has been created.
func (s *Store) SchemaExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema != nil && s.schema.Name == name, nil
}

// InsertRows upserts rows. New rows (Seq == 0 and unknown ID) get a fresh
// insertion sequence; upserts of known IDs keep the original one.
func (s *Store) InsertRows(_ context.Context, rows []db.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if row.Seq == 0 {
			if existing, ok := s.rows[row.ID]; ok {
				row.Seq = existing.Seq
			} else {
				s.seq++
				row.Seq = s.seq
			}
		}
		s.rows[row.ID] = row
	}
	return nil
}

// SelectByID returns a row copy or db.ErrRowNotFound.
func (s *Store) SelectByID(_ context.Context, id string) (*db.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, db.ErrRowNotFound
	}
	return &row, nil
}

// DeleteRow removes a row or returns db.ErrRowNotFound.
func (s *Store) DeleteRow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return db.ErrRowNotFound
	}
	delete(s.rows, id)
	return nil
}

// DeleteWhere removes every row matching the filter and returns the count.
func (s *Store) DeleteWhere(_ context.Context, filter metadata.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int
	for id, row := range s.rows {
		if filter.Matches(row.Meta) {
			delete(s.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

// Clear removes all rows.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[string]db.Row)
	return nil
}

// Count returns the stored row count.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

// VectorTopK scans every row passing the filter, computes the metric
// distance, and returns the K closest (ties by insertion sequence).
func (s *Store) VectorTopK(_ context.Context, q *db.VectorQuery) (*db.TopKResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metric := vector.Cosine
	if s.schema != nil {
		metric = s.schema.Metric
	}

	entries := make([]db.TopKEntry, 0, len(s.rows))
	for _, row := range s.rows {
		if !q.Filter.Matches(row.Meta) {
			continue
		}
		e := db.TopKEntry{
			ID:      row.ID,
			Score:   vector.Distance(metric, q.Vector, row.Vector),
			Content: row.Content,
			Meta:    row.Meta,
			Seq:     row.Seq,
		}
		if q.IncludeVector {
			e.Vector = row.Vector
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].Seq < entries[j].Seq
	})
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.TopKResult{Entries: entries}, nil
}

// TextTopK ranks rows passing the filter by term frequency of the query
// tokens in the content. Rows with no matching token are excluded.
func (s *Store) TextTopK(_ context.Context, q *db.TextQuery) (*db.TopKResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryTokens := tokenize(q.Query)
	entries := make([]db.TopKEntry, 0)
	for _, row := range s.rows {
		if !q.Filter.Matches(row.Meta) {
			continue
		}
		score := termFrequencyScore(queryTokens, tokenize(row.Content))
		if score <= 0 {
			continue
		}
		e := db.TopKEntry{
			ID:      row.ID,
			Score:   score,
			Content: row.Content,
			Meta:    row.Meta,
			Seq:     row.Seq,
		}
		if q.IncludeVector {
			e.Vector = row.Vector
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Seq < entries[j].Seq
	})
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.TopKResult{Entries: entries}, nil
}

// Get retrieves a KV value, honoring TTL expiry.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.kv[key]
	if !ok {
		return "", db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.kv, key)
		return "", db.ErrKeyNotFound
	}
	return e.value, nil
}

// Set stores a KV value without expiry.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = kvEntry{value: value}
	return nil
}

// SetWithTTL stores a KV value with an expiry.
func (s *Store) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = kvEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// IncrBy atomically increments a counter key.
func (s *Store) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur int64
	if e, ok := s.kv[key]; ok {
		parsed, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, &db.Error{Op: db.OpIncrBy, Err: err}
		}
		cur = parsed
	}
	cur += val
	s.kv[key] = kvEntry{value: strconv.FormatInt(cur, 10)}
	return cur, nil
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termFrequencyScore counts occurrences of query tokens in the content,
// normalized by content length so short exact matches outrank long
// documents with incidental hits.
func termFrequencyScore(queryTokens, contentTokens []string) float64 {
	if len(queryTokens) == 0 || len(contentTokens) == 0 {
		return 0
	}
	tf := make(map[string]int, len(contentTokens))
	for _, tok := range contentTokens {
		tf[tok]++
	}
	var hits int
	for _, q := range queryTokens {
		hits += tf[q]
	}
	if hits == 0 {
		return 0
	}
	return float64(hits) / float64(len(contentTokens))
}
