package metadata

import (
	"fmt"
	"strings"

	"github.com/lexivec/lexivec/internal/domain"
)

// MaxConditions is the maximum number of conditions per filter.
const MaxConditions = 32

// Op is the comparison applied by a filter condition.
type Op int

// Supported condition operators.
const (
	// OpEq matches a scalar exactly.
	OpEq Op = iota
	// OpContains matches list membership (lists of scalars) or substring
	// containment (strings).
	OpContains
)

// Condition is a single filter clause over one metadata path.
type Condition struct {
	path  string
	op    Op
	value Value
}

// NewCondition validates and creates a condition. The comparison value must
// be a scalar.
func NewCondition(path string, op Op, value Value) (Condition, error) {
	if path == "" {
		return Condition{}, fmt.Errorf("filter path is required: %w", domain.ErrInvalidFilter)
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return Condition{}, fmt.Errorf("filter path %q has empty segment: %w", path, domain.ErrInvalidFilter)
		}
	}
	if op != OpEq && op != OpContains {
		return Condition{}, fmt.Errorf("unknown filter op %d: %w", op, domain.ErrInvalidFilter)
	}
	if !value.IsScalar() {
		return Condition{}, fmt.Errorf(
			"filter value for %q must be a scalar: %w", path, domain.ErrInvalidFilter,
		)
	}
	return Condition{path: path, op: op, value: value}, nil
}

// Eq creates an exact-match condition.
func Eq(path string, value Value) (Condition, error) {
	return NewCondition(path, OpEq, value)
}

// Contains creates a containment condition.
func Contains(path string, value Value) (Condition, error) {
	return NewCondition(path, OpContains, value)
}

// Path returns the dotted metadata path.
func (c Condition) Path() string { return c.path }

// Op returns the comparison operator.
func (c Condition) Op() Op { return c.op }

// Value returns the scalar comparison value.
func (c Condition) Value() Value { return c.value }

// matches evaluates the condition against a metadata map.
func (c Condition) matches(m Map) bool {
	got, ok := m.lookup(c.path)
	if !ok {
		return false
	}
	switch c.op {
	case OpEq:
		return got.Equal(c.value)
	case OpContains:
		switch got.Kind() {
		case KindList:
			for _, e := range got.Items() {
				if e.Equal(c.value) {
					return true
				}
			}
			return false
		case KindString:
			return c.value.Kind() == KindString && strings.Contains(got.Str(), c.value.Str())
		case KindNumber, KindBool, KindNull, KindObject:
			return false
		default:
			return false
		}
	default:
		return false
	}
}

// Filter is a conjunction of conditions. The zero Filter matches everything.
type Filter struct {
	conds []Condition
}

// NewFilter validates and creates a filter.
func NewFilter(conds ...Condition) (Filter, error) {
	if len(conds) > MaxConditions {
		return Filter{}, fmt.Errorf(
			"too many filter conditions (max %d): %w", MaxConditions, domain.ErrInvalidFilter,
		)
	}
	return Filter{conds: conds}, nil
}

// Conditions returns the filter clauses.
func (f Filter) Conditions() []Condition { return f.conds }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conds) == 0 }

// Matches reports whether every condition holds for the given metadata.
// Documents failing the filter are excluded before ranking.
func (f Filter) Matches(m Map) bool {
	for _, c := range f.conds {
		if !c.matches(m) {
			return false
		}
	}
	return true
}
