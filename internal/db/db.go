// Package db defines the storage backend boundary: any backend capable of
// keyed row storage, vector top-K ranking, and full-text top-K ranking
// satisfies it.
package db

import (
	"context"
	"time"

	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	SchemaManager
	RowStore
	Searcher
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaManager provides search schema lifecycle operations.
type SchemaManager interface {
	CreateSchema(ctx context.Context, def *SchemaDefinition) error
	DropSchema(ctx context.Context, name string) error
	SchemaExists(ctx context.Context, name string) (bool, error)
}

// Row is a stored document record. Seq is the backend-assigned insertion
// sequence; rows passed in with Seq == 0 get a fresh one.
type Row struct {
	ID      string
	Content string
	Meta    metadata.Map
	Vector  []float32
	Seq     int64
}

// RowStore provides keyed row operations. InsertRows is an upsert: one
// pipelined round-trip, all rows or an error.
type RowStore interface {
	InsertRows(ctx context.Context, rows []Row) error
	SelectByID(ctx context.Context, id string) (*Row, error)
	DeleteRow(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter metadata.Filter) (int, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Searcher provides ranked retrieval. Both calls apply the metadata filter
// before ranking and tie-break equal scores by insertion sequence.
type Searcher interface {
	VectorTopK(ctx context.Context, q *VectorQuery) (*TopKResult, error)
	TextTopK(ctx context.Context, q *TextQuery) (*TopKResult, error)
}

// KVStore provides simple key-value operations (embedding cache, counters).
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}
