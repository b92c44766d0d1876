package search

import (
	"sort"

	"github.com/lexivec/lexivec/internal/domain/search/result"
)

// fuseWeighted merges lexical and vector rankings by weighted sum:
// fused = textWeight*textRank + vectorWeight*similarity. A document missing
// from one side contributes exactly zero for that side. The union is sorted
// descending by fused score with ties broken by insertion sequence, so the
// ranking is a deterministic total order.
func fuseWeighted(textHits, vecHits []result.Result, textWeight, vectorWeight float64) []result.Result {
	merged := make(map[string]result.Result, len(textHits)+len(vecHits))

	for _, h := range textHits {
		merged[h.ID()] = h
	}
	for _, h := range vecHits {
		if existing, ok := merged[h.ID()]; ok {
			// Vector hit carries the document fields (it may include the
			// vector); keep them and combine the score components.
			combined := h.WithScores(h.Similarity(), existing.TextRank(), 0)
			merged[h.ID()] = combined
		} else {
			merged[h.ID()] = h
		}
	}

	fused := make([]result.Result, 0, len(merged))
	for _, h := range merged {
		score := textWeight*h.TextRank() + vectorWeight*h.Similarity()
		fused = append(fused, h.WithScores(h.Similarity(), h.TextRank(), score))
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].FusedScore() != fused[j].FusedScore() {
			return fused[i].FusedScore() > fused[j].FusedScore()
		}
		return fused[i].Seq() < fused[j].Seq()
	})

	return fused
}
