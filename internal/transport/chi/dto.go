package chi

import (
	"fmt"

	domdoc "github.com/lexivec/lexivec/internal/domain/document"
	"github.com/lexivec/lexivec/internal/domain/metadata"
	"github.com/lexivec/lexivec/internal/domain/search/request"
	"github.com/lexivec/lexivec/internal/domain/search/result"
	documentuc "github.com/lexivec/lexivec/internal/usecase/document"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeDocumentNotFound  errorCode = "document_not_found"
	codeDimensionMismatch errorCode = "vector_dim_mismatch"
	codeInvalidFilter     errorCode = "invalid_filter"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeTimeout           errorCode = "timeout"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type documentDraft struct {
	ID       string       `json:"id,omitempty"`
	Content  string       `json:"content"`
	Metadata metadata.Map `json:"metadata,omitempty"`
	Vector   []float32    `json:"vector,omitempty"`
}

type insertRequest struct {
	Documents []documentDraft `json:"documents"`
}

type insertResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

type documentResponse struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Metadata metadata.Map `json:"metadata,omitempty"`
	Vector   []float32    `json:"vector,omitempty"`
}

type patchRequest struct {
	Content  *string      `json:"content"`
	Metadata metadata.Map `json:"metadata"`
	Vector   []float32    `json:"vector"`
}

type statsResponse struct {
	TotalDocuments int64 `json:"total_documents"`
	Dimensions     int   `json:"dimensions"`
}

// filterCondition is one wire-format filter clause. Op defaults to "eq".
type filterCondition struct {
	Path  string         `json:"path"`
	Op    string         `json:"op,omitempty"`
	Value metadata.Value `json:"value"`
}

type deleteByQueryRequest struct {
	Filter []filterCondition `json:"filter"`
}

type deleteByQueryResponse struct {
	Deleted int `json:"deleted"`
}

type searchRequest struct {
	Query           string            `json:"query"`
	Vector          []float32         `json:"vector,omitempty"`
	Limit           int               `json:"limit,omitempty"`
	Threshold       *float64          `json:"threshold,omitempty"`
	Filter          []filterCondition `json:"filter,omitempty"`
	IncludeContent  *bool             `json:"include_content,omitempty"`
	IncludeMetadata *bool             `json:"include_metadata,omitempty"`
	IncludeVectors  *bool             `json:"include_vectors,omitempty"`
}

type hybridSearchRequest struct {
	Query           string            `json:"query"`
	Limit           int               `json:"limit,omitempty"`
	TextWeight      *float64          `json:"text_weight,omitempty"`
	VectorWeight    *float64          `json:"vector_weight,omitempty"`
	Filter          []filterCondition `json:"filter,omitempty"`
	AllowPartial    bool              `json:"allow_partial,omitempty"`
	IncludeContent  *bool             `json:"include_content,omitempty"`
	IncludeMetadata *bool             `json:"include_metadata,omitempty"`
	IncludeVectors  *bool             `json:"include_vectors,omitempty"`
}

type searchResultItem struct {
	ID         string       `json:"id"`
	Score      float64      `json:"score"`
	Similarity float64      `json:"similarity,omitempty"`
	TextRank   float64      `json:"text_rank,omitempty"`
	Content    string       `json:"content,omitempty"`
	Metadata   metadata.Map `json:"metadata,omitempty"`
	Vector     []float32    `json:"vector,omitempty"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func draftsFromWire(items []documentDraft) []documentuc.Draft {
	drafts := make([]documentuc.Draft, len(items))
	for i, item := range items {
		drafts[i] = documentuc.Draft{
			ID:       item.ID,
			Content:  item.Content,
			Metadata: item.Metadata,
			Vector:   item.Vector,
		}
	}
	return drafts
}

func documentToWire(doc *domdoc.Document) documentResponse {
	return documentResponse{
		ID:       doc.ID(),
		Content:  doc.Content(),
		Metadata: doc.Metadata(),
		Vector:   doc.Vector(),
	}
}

func filterFromWire(conds []filterCondition) (metadata.Filter, error) {
	if len(conds) == 0 {
		return metadata.Filter{}, nil
	}
	parsed := make([]metadata.Condition, len(conds))
	for i, c := range conds {
		op := metadata.OpEq
		switch c.Op {
		case "", "eq":
		case "contains":
			op = metadata.OpContains
		default:
			return metadata.Filter{}, fmt.Errorf("unknown filter op %q", c.Op)
		}
		cond, err := metadata.NewCondition(c.Path, op, c.Value)
		if err != nil {
			return metadata.Filter{}, fmt.Errorf("filter condition %d: %w", i, err)
		}
		parsed[i] = cond
	}
	f, err := metadata.NewFilter(parsed...)
	if err != nil {
		return metadata.Filter{}, fmt.Errorf("build filter: %w", err)
	}
	return f, nil
}

// includeFromWire applies wire defaults: content and metadata are returned
// unless disabled, vectors only on request.
func includeFromWire(content, meta, vectors *bool) request.Include {
	inc := request.Include{Content: true, Metadata: true}
	if content != nil {
		inc.Content = *content
	}
	if meta != nil {
		inc.Metadata = *meta
	}
	if vectors != nil {
		inc.Vectors = *vectors
	}
	return inc
}

// score selects the primary ranking signal for the endpoint: similarity for
// vector search, text rank for lexical, fused score for hybrid.
func resultsToWire(results []result.Result, score func(*result.Result) float64) searchResponse {
	items := make([]searchResultItem, len(results))
	for i := range results {
		r := &results[i]
		items[i] = searchResultItem{
			ID:         r.ID(),
			Score:      score(r),
			Similarity: r.Similarity(),
			TextRank:   r.TextRank(),
			Content:    r.Content(),
			Metadata:   r.Metadata(),
			Vector:     r.Vector(),
		}
	}
	return searchResponse{Items: items, Total: len(items)}
}
