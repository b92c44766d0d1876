package db

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/lexivec/lexivec/internal/domain/vector"
)

// FieldType enumerates supported filterable field types.
type FieldType int

const (
	// FieldTag is an exact-match string field (also holds bools, nulls, and
	// lists of scalars).
	FieldTag FieldType = iota
	// FieldNumeric is a numeric field.
	FieldNumeric
)

// FieldDef declares one filterable metadata path for backends that index a
// fixed schema. In-process backends ignore these declarations.
type FieldDef struct {
	Path string
	Type FieldType
}

// SchemaDefinition describes the single document schema of a store:
// content (full-text ranked), vector (similarity ranked), and the declared
// filterable metadata fields.
type SchemaDefinition struct {
	Name       string
	Dimensions int
	Metric     vector.Metric
	Fields     []FieldDef
}

var identRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// Validate checks that the schema definition is well-formed.
func (s *SchemaDefinition) Validate() error {
	if s.Name == "" {
		return errors.New("schema name is required")
	}
	if !identRegex.MatchString(s.Name) {
		return errors.New("schema name contains invalid characters")
	}
	if s.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", s.Dimensions)
	}
	if !s.Metric.IsValid() {
		return fmt.Errorf("unknown metric %q", s.Metric)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Path == "" {
			return errors.New("field path is required")
		}
		if seen[f.Path] {
			return fmt.Errorf("duplicate field path %q", f.Path)
		}
		seen[f.Path] = true
	}
	return nil
}
