package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/lexivec/lexivec/internal/db"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

// InsertRows upserts document hashes. Sequence numbers for new rows are
// allocated first (one pipelined INCR per row), then every hash is written
// in a single DoMulti round-trip.
func (s *Store) InsertRows(ctx context.Context, rows []db.Row) error {
	if len(rows) == 0 {
		return nil
	}

	for i := range rows {
		if rows[i].Seq != 0 {
			continue
		}
		seq, err := s.IncrBy(ctx, s.seqKey(), 1)
		if err != nil {
			return fmt.Errorf("allocate seq for %s: %w", rows[i].ID, err)
		}
		rows[i].Seq = seq
	}

	cmds := make([]rueidis.Completed, len(rows))
	for i, row := range rows {
		fields, err := buildHashFields(&row)
		if err != nil {
			return fmt.Errorf("encode row %s: %w", row.ID, err)
		}
		cmd := s.b().Hset().Key(s.docKey(row.ID)).FieldValue()
		for k, v := range fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpInsert, Err: fmt.Errorf("key %s: %w", rows[i].ID, err)}
		}
	}
	return nil
}

// SelectByID fetches one document hash.
func (s *Store) SelectByID(ctx context.Context, id string) (*db.Row, error) {
	cmd := s.b().Hgetall().Key(s.docKey(id)).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrRowNotFound
	}
	row, err := parseHashFields(id, m)
	if err != nil {
		return nil, fmt.Errorf("decode row %s: %w", id, err)
	}
	return row, nil
}

// DeleteRow removes a document hash, reporting db.ErrRowNotFound when the
// key was absent.
func (s *Store) DeleteRow(ctx context.Context, id string) error {
	cmd := s.b().Del().Key(s.docKey(id)).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if n == 0 {
		return db.ErrRowNotFound
	}
	return nil
}

// deleteWherePageSize bounds each FT.SEARCH page during bulk deletes.
const deleteWherePageSize = 500

// DeleteWhere removes every document matching the filter. Matching keys are
// collected via the FT index, then deleted in one pipelined round-trip per
// page.
func (s *Store) DeleteWhere(ctx context.Context, filter metadata.Filter) (int, error) {
	queryStr := "*"
	if !filter.IsEmpty() {
		built, err := s.buildFilter(filter)
		if err != nil {
			return 0, err
		}
		queryStr = built
	}

	var deleted int
	for {
		cmd := s.b().Arbitrary("FT.SEARCH").Args(
			s.indexName(), queryStr,
			"NOCONTENT",
			"LIMIT", "0", strconv.Itoa(deleteWherePageSize),
			"DIALECT", "2",
		).Build()
		raw, err := s.do(ctx, cmd).ToArray()
		if err != nil {
			return deleted, &db.Error{Op: db.OpSearch, Err: err}
		}

		keys := parseKeyList(raw)
		if len(keys) == 0 {
			return deleted, nil
		}

		cmds := make([]rueidis.Completed, len(keys))
		for i, key := range keys {
			cmds[i] = s.b().Del().Key(key).Build()
		}
		for _, res := range s.client.DoMulti(ctx, cmds...) {
			n, err := res.AsInt64()
			if err != nil {
				return deleted, &db.Error{Op: db.OpDel, Err: err}
			}
			deleted += int(n)
		}

		if len(keys) < deleteWherePageSize {
			return deleted, nil
		}
	}
}

// Clear removes every document hash under the store prefix.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.scan(ctx, s.docPrefix()+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Del().Key(key).Build()
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return nil
}

// Count returns the indexed document count via FT.SEARCH LIMIT 0 0.
func (s *Store) Count(ctx context.Context) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(s.indexName(), "*", "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// scan iterates keys matching a pattern.
func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// --- Row codec ---

// buildHashFields converts a row into a flat hash map: reserved payload
// fields plus one flattened field per indexable metadata path.
func buildHashFields(row *db.Row) (map[string]string, error) {
	metaJSON, err := row.Meta.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	flat := row.Meta.Flatten()
	m := make(map[string]string, 4+len(flat))
	m[fieldContent] = row.Content
	m[fieldVector] = vectorToBytes(row.Vector)
	m[fieldSeq] = strconv.FormatInt(row.Seq, 10)
	m[fieldMeta] = string(metaJSON)

	for _, f := range flat {
		m[metaFieldPrefix+f.Path] = strings.Join(f.Values, tagSeparator)
	}
	return m, nil
}

// parseHashFields converts a hash map back into a row. Flattened metadata
// fields are projections; the JSON payload is authoritative.
func parseHashFields(id string, m map[string]string) (*db.Row, error) {
	meta, err := metadata.FromJSON([]byte(m[fieldMeta]))
	if err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	var seq int64
	if raw := m[fieldSeq]; raw != "" {
		seq, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seq %q: %w", raw, err)
		}
	}

	return &db.Row{
		ID:      id,
		Content: m[fieldContent],
		Meta:    meta,
		Vector:  bytesToVector(m[fieldVector]),
		Seq:     seq,
	}, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float,
// little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// parseKeyList extracts document keys from a NOCONTENT FT.SEARCH reply:
// [total, key1, key2, ...].
func parseKeyList(raw []rueidis.RedisMessage) []string {
	if len(raw) < 2 {
		return nil
	}
	keys := make([]string, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		key, err := msg.ToString()
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
