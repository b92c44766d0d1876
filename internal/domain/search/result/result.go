// Package result holds the search hit value object.
package result

import "github.com/lexivec/lexivec/internal/domain/metadata"

// Result is a single search hit. Similarity, TextRank, and FusedScore use
// different native scales; FusedScore alone is the comparable total order
// for hybrid results.
type Result struct {
	id         string
	similarity float64
	textRank   float64
	fusedScore float64
	content    string
	metadata   metadata.Map
	vector     []float32
	seq        int64
}

// New creates a search result.
func New(id string, similarity, textRank, fusedScore float64, seq int64) Result {
	return Result{
		id: id, similarity: similarity, textRank: textRank, fusedScore: fusedScore, seq: seq,
	}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Similarity returns the vector score on the uniform higher-is-better scale.
func (r *Result) Similarity() float64 { return r.similarity }

// TextRank returns the non-negative lexical relevance score.
func (r *Result) TextRank() float64 { return r.textRank }

// FusedScore returns the combined hybrid score.
func (r *Result) FusedScore() float64 { return r.fusedScore }

// Content returns the document content, when requested.
func (r *Result) Content() string { return r.content }

// Metadata returns the document metadata, when requested.
func (r *Result) Metadata() metadata.Map { return r.metadata }

// Vector returns the document embedding, when requested.
func (r *Result) Vector() []float32 { return r.vector }

// Seq returns the insertion sequence used for stable tie-breaking.
func (r *Result) Seq() int64 { return r.seq }

// WithDocument returns a copy carrying the requested document fields.
func (r *Result) WithDocument(content string, meta metadata.Map, vector []float32) Result {
	c := *r
	c.content = content
	c.metadata = meta
	c.vector = vector
	return c
}

// WithScores returns a copy with replaced score components.
func (r *Result) WithScores(similarity, textRank, fusedScore float64) Result {
	c := *r
	c.similarity = similarity
	c.textRank = textRank
	c.fusedScore = fusedScore
	return c
}
