package lexivec

import (
	"time"

	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/db"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver    string // "memory" or "redis"
	addrs     []string
	username  string
	password  string
	database  int
	keyPrefix string

	embedder Embedder

	dimensions   int
	metric       Metric
	fields       []db.FieldDef
	maxBatchSize int

	cacheTTL  time.Duration
	opTimeout time.Duration

	logger *zap.Logger
}

// WithMemory selects the in-process backend. This is the default.
func WithMemory() Option {
	return func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	}
}

// WithRedis configures the client to connect to a Redis instance with the
// search module loaded.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedisUsername sets the ACL username for Redis connections.
func WithRedisUsername(username string) Option {
	return func(c *clientConfig) {
		c.username = username
	}
}

// WithRedisDB selects a logical Redis database.
func WithRedisDB(n int) Option {
	return func(c *clientConfig) {
		c.database = n
	}
}

// WithKeyPrefix sets the key namespace for Redis-backed stores.
// Defaults to "lexivec:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithEmbedder sets the text embedding provider. Without one, text and
// hybrid queries and vector-less inserts return an error.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithDimensions sets the vector dimensionality of the store.
// Defaults to 1024.
func WithDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.dimensions = dim
	}
}

// WithMetric sets the distance metric for similarity ranking.
// Defaults to MetricCosine.
func WithMetric(m Metric) Option {
	return func(c *clientConfig) {
		c.metric = m
	}
}

// WithFilterField declares a filterable metadata path. Redis-backed stores
// only accept filters on declared paths; the in-process backend filters on
// any path and ignores these declarations.
func WithFilterField(path string, kind FieldKind) Option {
	return func(c *clientConfig) {
		ft := db.FieldTag
		if kind == FieldNumeric {
			ft = db.FieldNumeric
		}
		c.fields = append(c.fields, db.FieldDef{Path: path, Type: ft})
	}
}

// WithEmbeddingCache caches embeddings in the backing store with the given
// TTL, keyed by text and model. Zero or negative TTL disables caching.
func WithEmbeddingCache(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheTTL = ttl
	}
}

// WithMaxBatchSize sets the maximum number of documents per Insert call.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = size
	}
}

// WithOperationTimeout bounds each client operation when the caller's
// context has no deadline. Default: 30s.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.opTimeout = d
	}
}

// WithLogger enables structured logging for client operations.
// Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
