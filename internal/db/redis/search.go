package redis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/vector"
)

// VectorTopK runs a KNN vector search via FT.SEARCH. Scores are returned as
// metric-native distances (L2 squared distances from Redis are unsquared).
func (s *Store) VectorTopK(ctx context.Context, q *db.VectorQuery) (*db.TopKResult, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	filterStr, err := s.preFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	queryStr := fmt.Sprintf("%s=>[KNN %d @%s $BLOB]", filterStr, q.K, fieldVector)

	returnFields := []string{fieldContent, fieldMeta, fieldSeq, scoreField}
	if q.IncludeVector {
		returnFields = append(returnFields, fieldVector)
	}

	args := []string{s.indexName(), queryStr}
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)))
	args = append(args, returnFields...)
	args = append(args,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return s.parseVectorResult(raw)
}

// TextTopK runs a BM25 text search via FT.SEARCH.
func (s *Store) TextTopK(ctx context.Context, q *db.TextQuery) (*db.TopKResult, error) {
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	textPart := fmt.Sprintf("@%s:(%s)", fieldContent, escapeQuery(q.Query))

	queryStr := textPart
	if !q.Filter.IsEmpty() {
		filterStr, err := s.buildFilter(q.Filter)
		if err != nil {
			return nil, err
		}
		queryStr = filterStr + " " + textPart
	}

	returns := []string{fieldContent, fieldMeta, fieldSeq}
	if q.IncludeVector {
		returns = append(returns, fieldVector)
	}
	args := []string{s.indexName(), queryStr, "RETURN", strconv.Itoa(len(returns))}
	args = append(args, returns...)
	args = append(args,
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.K),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return s.parseTextResult(raw)
}

// preFilter renders the KNN pre-filter component: "*" when empty,
// "(conditions)" otherwise.
func (s *Store) preFilter(filter metadata.Filter) (string, error) {
	if filter.IsEmpty() {
		return "*", nil
	}
	built, err := s.buildFilter(filter)
	if err != nil {
		return "", err
	}
	return "(" + built + ")", nil
}

// --- Result parsing ---

func (s *Store) parseVectorResult(raw []rueidis.RedisMessage) (*db.TopKResult, error) {
	if len(raw) == 0 {
		return &db.TopKResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.TopKResult{}, nil
	}

	entries := make([]db.TopKEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		entry, err := s.entryFromFields(key, fields)
		if err != nil {
			return nil, err
		}
		if scoreStr, ok := fields[scoreField]; ok {
			d, err := strconv.ParseFloat(scoreStr, 64)
			if err == nil {
				entry.Score = s.nativeDistance(d)
			}
		}
		entries = append(entries, entry)
	}

	return &db.TopKResult{Entries: entries}, nil
}

func (s *Store) parseTextResult(raw []rueidis.RedisMessage) (*db.TopKResult, error) {
	if len(raw) == 0 {
		return &db.TopKResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.TopKResult{}, nil
	}

	entries := make([]db.TopKEntry, 0, total)
	// 3-stride with WITHSCORES: [total, key1, score1, fields1, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entry, err := s.entryFromFields(key, parseFieldPairs(fieldMsgs))
		if err != nil {
			return nil, err
		}
		entry.Score = score
		entries = append(entries, entry)
	}

	return &db.TopKResult{Entries: entries}, nil
}

func (s *Store) entryFromFields(key string, fields map[string]string) (db.TopKEntry, error) {
	meta, err := metadata.FromJSON([]byte(fields[fieldMeta]))
	if err != nil {
		return db.TopKEntry{}, fmt.Errorf("decode metadata for %s: %w", key, err)
	}

	var seq int64
	if raw := fields[fieldSeq]; raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			seq = parsed
		}
	}

	entry := db.TopKEntry{
		ID:      s.docID(key),
		Content: fields[fieldContent],
		Meta:    meta,
		Seq:     seq,
	}
	if rawVec, ok := fields[fieldVector]; ok {
		entry.Vector = bytesToVector(rawVec)
	}
	return entry, nil
}

// nativeDistance converts a Redis __vector_score to the metric-native
// distance the engine expects. Redis reports squared distances for L2.
func (s *Store) nativeDistance(d float64) float64 {
	if s.schema != nil && s.schema.Metric == vector.L2 {
		return math.Sqrt(d)
	}
	return d
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter compiles a metadata filter into an FT.SEARCH pre-filter
// string over the declared schema fields. Conditions on undeclared paths,
// and substring Contains, cannot be pushed into the index and are rejected
// with db.ErrFilterNotIndexed.
func (s *Store) buildFilter(filter metadata.Filter) (string, error) {
	parts := make([]string, 0, len(filter.Conditions()))
	for _, cond := range filter.Conditions() {
		part, err := s.buildCondition(cond)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

func (s *Store) buildCondition(cond metadata.Condition) (string, error) {
	field, ok := s.fieldByPath(cond.Path())
	if !ok {
		return "", fmt.Errorf("field %q not declared in schema: %w",
			cond.Path(), db.ErrFilterNotIndexed)
	}

	alias := fieldAlias(cond.Path())

	switch field.Type {
	case db.FieldNumeric:
		if cond.Op() != metadata.OpEq || cond.Value().Kind() != metadata.KindNumber {
			return "", fmt.Errorf("numeric field %q supports only numeric equality: %w",
				cond.Path(), db.ErrFilterNotIndexed)
		}
		v := strconv.FormatFloat(cond.Value().Num(), 'f', -1, 64)
		return fmt.Sprintf("@%s:[%s %s]", alias, v, v), nil

	case db.FieldTag:
		// Eq on a scalar and Contains on a list element compile to the same
		// whole-element TAG match. Substring matching has no TAG form, so
		// Contains against a plain string narrows to exact match here.
		return fmt.Sprintf("@%s:{%s}", alias, escapeTagValue(scalarQueryValue(cond.Value()))), nil

	default:
		return "", fmt.Errorf("unknown field type for %q: %w", cond.Path(), db.ErrFilterNotIndexed)
	}
}

func (s *Store) fieldByPath(path string) (db.FieldDef, bool) {
	if s.schema == nil {
		return db.FieldDef{}, false
	}
	for _, f := range s.schema.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return db.FieldDef{}, false
}

// scalarQueryValue renders a scalar condition value the way the row codec
// renders it into TAG fields.
func scalarQueryValue(v metadata.Value) string {
	switch v.Kind() {
	case metadata.KindString:
		return v.Str()
	case metadata.KindNumber:
		return strconv.FormatFloat(v.Num(), 'f', -1, 64)
	case metadata.KindBool:
		return strconv.FormatBool(v.B())
	default:
		return ""
	}
}

// escapeTagValue escapes FT query syntax characters inside a TAG match.
var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>", "{", "\\{", "}", "\\}",
	"[", "\\[", "]", "\\]", "\"", "\\\"", "'", "\\'", ":", "\\:", ";", "\\;",
	"!", "\\!", "@", "\\@", "#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)", "-", "\\-", "+", "\\+",
	"=", "\\=", "~", "\\~", "|", "\\|", "/", "\\/", " ", "\\ ",
)

func escapeTagValue(v string) string {
	return tagEscaper.Replace(v)
}

// escapeQuery escapes FT full-text query syntax so user text is treated as
// plain terms.
var queryEscaper = strings.NewReplacer(
	"@", "\\@", "{", "\\{", "}", "\\}", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "\"", "\\\"", "'", "\\'", ":", "\\:",
	";", "\\;", "!", "\\!", "*", "\\*", "~", "\\~", "|", "\\|",
	"%", "\\%", "$", "\\$", "-", "\\-", "=", "\\=", ">", "\\>", "<", "\\<",
)

func escapeQuery(q string) string {
	return queryEscaper.Replace(q)
}
