// Package lexivec is an embeddable document store with hybrid search:
// vector similarity and BM25-style lexical ranking fused by weighted sum.
//
// It runs fully in-process on the memory backend, or against a Redis
// instance with the search module for persistence and scale.
//
//	client, _ := lexivec.New(
//	    lexivec.WithEmbedder(myEmbedder),
//	    lexivec.WithDimensions(1024),
//	    lexivec.WithFilterField("category", lexivec.FieldTag),
//	)
//	defer client.Close()
//
//	ids, _ := client.Insert(ctx, lexivec.Document{
//	    Content:  "the quick brown fox",
//	    Metadata: map[string]any{"category": "animals"},
//	})
//
//	results, _ := client.SearchHybrid(ctx, "fast fox", &lexivec.HybridOptions{
//	    Limit:  10,
//	    Filter: lexivec.Filter{lexivec.Eq("category", "animals")},
//	})
//
// Callers that already hold vectors can skip the embedder entirely and use
// Insert with explicit vectors plus SearchVector and SearchLexical.
package lexivec
