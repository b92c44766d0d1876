package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

// Reserved hash field names for the document payload.
const (
	fieldContent = "__content"
	fieldMeta    = "__meta"
	fieldVector  = "__vector"
	fieldSeq     = "__seq"
	scoreField   = "__vector_score"
)

// tagSeparator joins list elements inside a TAG field. The unit separator
// is vanishingly unlikely to occur in metadata values.
const tagSeparator = "\x1f"

// metaFieldPrefix namespaces flattened metadata hash fields so they can
// never collide with the reserved payload fields.
const metaFieldPrefix = "m:"

// CreateSchema creates the FT index over document hashes and caches the
// definition for filter compilation.
func (s *Store) CreateSchema(ctx context.Context, def *db.SchemaDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateSchema, Err: err}
	}

	args := []string{
		s.indexName(),
		"ON", "HASH",
		"PREFIX", "1", s.docPrefix(),
		"SCHEMA",
		fieldContent, "TEXT",
		fieldSeq, "NUMERIC", "SORTABLE",
	}

	for _, f := range def.Fields {
		name := metaFieldPrefix + f.Path
		switch f.Type {
		case db.FieldNumeric:
			args = append(args, name, "AS", fieldAlias(f.Path), "NUMERIC")
		case db.FieldTag:
			args = append(args, name, "AS", fieldAlias(f.Path),
				"TAG", "SEPARATOR", tagSeparator)
		}
	}

	args = append(args,
		fieldVector, "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(def.Dimensions),
		"DISTANCE_METRIC", redisMetric(def.Metric),
	)

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			// Cache the definition anyway so filter compilation works
			// against a pre-existing index.
			cp := *def
			s.schema = &cp
			return db.ErrSchemaExists
		}
		return &db.Error{Op: db.OpCreateSchema, Err: err}
	}

	cp := *def
	s.schema = &cp
	return nil
}

// DropSchema removes the FT index and its documents.
func (s *Store) DropSchema(ctx context.Context, _ string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(s.indexName(), "DD").Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrSchemaNotFound
		}
		return &db.Error{Op: db.OpDropSchema, Err: err}
	}
	s.schema = nil
	return nil
}

// SchemaExists checks index existence via FT.INFO.
func (s *Store) SchemaExists(ctx context.Context, _ string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.indexName()).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpSchemaInfo, Err: err}
	}
	return true, nil
}

// redisMetric maps the store metric to the FT DISTANCE_METRIC argument.
func redisMetric(m vector.Metric) string {
	switch m {
	case vector.L2:
		return "L2"
	case vector.Dot:
		return "IP"
	default:
		return "COSINE"
	}
}

// fieldAlias mangles a dotted metadata path into an FT attribute name the
// query parser accepts without escaping.
func fieldAlias(path string) string {
	return "f_" + strings.NewReplacer(".", "_", "-", "_").Replace(path)
}
