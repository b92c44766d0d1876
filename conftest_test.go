package lexivec

import (
	"context"
	"testing"
)

// wordEmbedder maps a few known words to fixed 3-dimensional vectors so
// tests control similarity ordering exactly. Unknown text lands on a
// vector orthogonal to both.
func wordEmbedder() *mockEmbedder {
	vecs := map[string][]float32{
		"cat": {1, 0, 0},
		"dog": {0, 1, 0},
	}
	return &mockEmbedder{
		fn: func(_ context.Context, text string) (EmbeddingResult, error) {
			v, ok := vecs[text]
			if !ok {
				v = []float32{0, 0, 1}
			}
			return EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
		},
	}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithMemory(), WithDimensions(3), WithEmbedder(wordEmbedder())}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func insertPets(t *testing.T, c *Client) {
	t.Helper()
	_, err := c.Insert(context.Background(),
		Document{ID: "cat", Content: "cat", Metadata: map[string]any{"species": "feline"}},
		Document{ID: "dog", Content: "dog", Metadata: map[string]any{"species": "canine"}},
	)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
}
