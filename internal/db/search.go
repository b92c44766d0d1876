package db

import "github.com/lexivec/lexivec/internal/domain/metadata"

// VectorQuery is the input for vector top-K retrieval.
type VectorQuery struct {
	Vector        []float32
	K             int
	Filter        metadata.Filter
	IncludeVector bool
}

// TextQuery is the input for full-text top-K retrieval.
type TextQuery struct {
	Query         string
	K             int
	Filter        metadata.Filter
	IncludeVector bool
}

// TopKResult is the output of a ranked retrieval.
type TopKResult struct {
	Entries []TopKEntry
}

// TopKEntry is a single ranked hit. For vector queries Score is the raw
// metric distance (lower is closer); for text queries it is the
// non-negative relevance rank (higher is better).
type TopKEntry struct {
	ID      string
	Score   float64
	Content string
	Meta    metadata.Map
	Vector  []float32
	Seq     int64
}
