package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/lexivec/lexivec/internal/db"
)

// Get returns the value stored under key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	cmd := s.b().Get().Key(s.prefix + key).Build()
	v, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", &db.Error{Op: db.OpGet, Err: db.ErrKeyNotFound}
		}
		return "", &db.Error{Op: db.OpGet, Err: err}
	}
	return v, nil
}

// Set stores value under key without expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	cmd := s.b().Set().Key(s.prefix + key).Value(value).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores value under key with an expiry.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := s.b().Set().Key(s.prefix + key).Value(value).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// IncrBy atomically increments the integer stored under key and returns
// the new value. Missing keys start at zero.
func (s *Store) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	cmd := s.b().Incrby().Key(s.prefix + key).Increment(delta).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return n, nil
}
