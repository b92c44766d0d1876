package lexivec

import (
	"fmt"

	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// Metric selects the distance function used for vector similarity ranking.
type Metric string

// Metric constants.
const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
	MetricDot    Metric = "dot"
)

// FieldKind defines the type of a filterable metadata field.
type FieldKind string

// Field kind constants.
const (
	FieldTag     FieldKind = "tag"
	FieldNumeric FieldKind = "numeric"
)

// Document is a document for insertion. ID and Vector are optional: a
// missing ID gets a generated UUID, a missing Vector is produced by the
// configured embedder.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32
}

// Patch is a partial document update. Nil fields are unchanged; a non-nil
// Content or Metadata replaces that part wholesale and triggers
// re-embedding unless Vector is also set.
type Patch struct {
	Content  *string
	Metadata map[string]any
	Vector   []float32
}

// SearchResult is a single search hit. Score is the ranking score of the
// operation that produced it: similarity for vector search, text rank for
// lexical search, the fused score for hybrid search.
type SearchResult struct {
	ID         string
	Score      float64
	Similarity float64
	TextRank   float64
	Content    string
	Metadata   map[string]any
	Vector     []float32
}

// Stats summarizes the store.
type Stats struct {
	TotalDocuments int64
	Dimensions     int
}

// FilterOp is a filter comparison operator.
type FilterOp string

// Filter operator constants.
const (
	// OpEq matches a scalar exactly.
	OpEq FilterOp = "eq"
	// OpContains matches list membership or substring occurrence.
	OpContains FilterOp = "contains"
)

// Condition is a single filter clause on a dotted metadata path.
type Condition struct {
	Path  string
	Op    FilterOp
	Value any
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter []Condition

// Eq creates an exact-match condition.
func Eq(path string, value any) Condition {
	return Condition{Path: path, Op: OpEq, Value: value}
}

// Contains creates a containment condition.
func Contains(path string, value any) Condition {
	return Condition{Path: path, Op: OpContains, Value: value}
}

func toInternalFilter(f Filter) (metadata.Filter, error) {
	if len(f) == 0 {
		return metadata.Filter{}, nil
	}
	conds := make([]metadata.Condition, 0, len(f))
	for _, c := range f {
		v, err := metadata.FromAny(c.Value)
		if err != nil {
			return metadata.Filter{}, fmt.Errorf("filter value for %q: %w", c.Path, err)
		}
		var op metadata.Op
		switch c.Op {
		case OpEq, "":
			op = metadata.OpEq
		case OpContains:
			op = metadata.OpContains
		default:
			return metadata.Filter{}, fmt.Errorf("unknown filter op %q for %q: %w", c.Op, c.Path, ErrInvalidFilter)
		}
		cond, err := metadata.NewCondition(c.Path, op, v)
		if err != nil {
			return metadata.Filter{}, err
		}
		conds = append(conds, cond)
	}
	return metadata.NewFilter(conds...)
}
