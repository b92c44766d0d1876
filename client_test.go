package lexivec

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown"}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_RedisNoAddress(t *testing.T) {
	cfg := &clientConfig{driver: "redis"}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error when redis driver has no address")
	}
}

func TestNew_InvalidMetric(t *testing.T) {
	_, err := New(WithMemory(), WithMetric("euclidean"))
	if err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestNoopEmbedder(t *testing.T) {
	noop := &noopEmbedder{}
	_, err := noop.Embed(context.Background(), "test")
	if err == nil {
		t.Fatal("expected error from noopEmbedder")
	}
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("error = %v, want ErrEmbeddingProvider", err)
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			called = true
			return EmbeddingResult{
				Embedding:    []float32{1, 2, 3},
				PromptTokens: 5,
				TotalTokens:  10,
			}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 10 {
		t.Errorf("total tokens = %d, want 10", result.TotalTokens)
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := &embedderAdapter{inner: mock}
	_, err := adapter.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6379", "secret")(cfg)
	if cfg.driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg.driver)
	}
	if cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want localhost:6379", cfg.addrs[0])
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	WithMemory()(cfg)
	if cfg.driver != "memory" || cfg.addrs != nil {
		t.Errorf("driver = %q addrs = %v, want memory with no addrs", cfg.driver, cfg.addrs)
	}

	cfg2 := &clientConfig{}
	WithDimensions(768)(cfg2)
	if cfg2.dimensions != 768 {
		t.Errorf("dimensions = %d, want 768", cfg2.dimensions)
	}

	WithMetric(MetricL2)(cfg2)
	if cfg2.metric != MetricL2 {
		t.Errorf("metric = %q, want l2", cfg2.metric)
	}

	WithFilterField("category", FieldTag)(cfg2)
	WithFilterField("price", FieldNumeric)(cfg2)
	if len(cfg2.fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(cfg2.fields))
	}
	if cfg2.fields[0].Path != "category" {
		t.Errorf("field path = %q, want category", cfg2.fields[0].Path)
	}

	WithMaxBatchSize(5000)(cfg2)
	if cfg2.maxBatchSize != 5000 {
		t.Errorf("maxBatchSize = %d, want 5000", cfg2.maxBatchSize)
	}

	WithOperationTimeout(5 * time.Second)(cfg2)
	if cfg2.opTimeout != 5*time.Second {
		t.Errorf("opTimeout = %v, want 5s", cfg2.opTimeout)
	}

	WithEmbeddingCache(time.Hour)(cfg2)
	if cfg2.cacheTTL != time.Hour {
		t.Errorf("cacheTTL = %v, want 1h", cfg2.cacheTTL)
	}

	WithKeyPrefix("app:")(cfg2)
	if cfg2.keyPrefix != "app:" {
		t.Errorf("keyPrefix = %q, want app:", cfg2.keyPrefix)
	}
}

func TestWithEmbedder(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, nil
		},
	}
	cfg := &clientConfig{}
	WithEmbedder(mock)(cfg)
	if cfg.embedder == nil {
		t.Error("expected non-nil embedder")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
