package lexivec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/db"
	dbMemory "github.com/lexivec/lexivec/internal/db/memory"
	dbRedis "github.com/lexivec/lexivec/internal/db/redis"
	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/vector"
	"github.com/lexivec/lexivec/internal/metrics"
	documentrepo "github.com/lexivec/lexivec/internal/repository/document"
	"github.com/lexivec/lexivec/internal/repository/embcache"
	searchrepo "github.com/lexivec/lexivec/internal/repository/search"
	documentuc "github.com/lexivec/lexivec/internal/usecase/document"
	searchuc "github.com/lexivec/lexivec/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDimensions       = 1024
	defaultOperationTimeout = 30 * time.Second
	defaultMaxBatchSize     = 100
	defaultSchemaName       = "lexivec"
)

// Client is the lexivec entry point: an embeddable document store with
// vector, lexical, and hybrid search.
type Client struct {
	store        db.Store
	docSvc       *documentuc.Service
	searchSvc    *searchuc.Service
	opTimeout    time.Duration
	maxBatchSize int
}

// New creates a Client, connects to the backing store, and ensures the
// document schema exists.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:     "memory",
		dimensions: defaultDimensions,
		metric:     MetricCosine,
		opTimeout:  defaultOperationTimeout,
	}
	for _, o := range opts {
		o(cfg)
	}

	if !vector.Metric(cfg.metric).IsValid() {
		return nil, fmt.Errorf("lexivec: unknown metric %q", cfg.metric)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("lexivec: store not ready: %w", err)
	}

	def := &db.SchemaDefinition{
		Name:       defaultSchemaName,
		Dimensions: cfg.dimensions,
		Metric:     vector.Metric(cfg.metric),
		Fields:     cfg.fields,
	}
	if err := store.CreateSchema(ctx, def); err != nil && !errors.Is(err, db.ErrSchemaExists) {
		store.Close()
		return nil, fmt.Errorf("lexivec: create schema: %w", err)
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return dbMemory.NewStore(), nil
	case "redis":
		if len(cfg.addrs) == 0 {
			return nil, errors.New("lexivec: redis address required (use WithRedis)")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			DB:        cfg.database,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("lexivec: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("lexivec: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var domEmb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
		if cfg.cacheTTL > 0 {
			domEmb = embcache.New(domEmb, store, "default", cfg.cacheTTL, metrics.EmbeddingCacheTotal, logger)
		}
	}

	storeCfg := domain.StoreConfig{
		Dimensions: cfg.dimensions,
		Metric:     vector.Metric(cfg.metric),
	}

	docRepo := documentrepo.New(store)
	searchRepo := searchrepo.New(store, vector.Metric(cfg.metric))

	opTimeout := cfg.opTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOperationTimeout
	}
	maxBatch := cfg.maxBatchSize
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatchSize
	}

	return &Client{
		store:        store,
		docSvc:       documentuc.New(docRepo, domEmb, storeCfg, logger),
		searchSvc:    searchuc.New(searchRepo, domEmb, storeCfg, logger),
		opTimeout:    opTimeout,
		maxBatchSize: maxBatch,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// opCtx applies the operation timeout when the caller set no deadline.
func (c *Client) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// embedderAdapter wraps the public Embedder to satisfy internal contracts.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"embedder not configured (use WithEmbedder for text queries): %w",
		domain.ErrEmbeddingProvider,
	)
}
