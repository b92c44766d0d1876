// Package chi exposes the document store over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/search/request"
	"github.com/lexivec/lexivec/internal/domain/search/result"
	documentuc "github.com/lexivec/lexivec/internal/usecase/document"
	healthuc "github.com/lexivec/lexivec/internal/usecase/health"
	searchuc "github.com/lexivec/lexivec/internal/usecase/search"
)

const defaultMaxBatchSize = 100

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the document and search services.
type Server struct {
	documents     *documentuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBatchSize  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxBatchSize bounds the documents
// accepted per insert request; non-positive falls back to the default.
func NewServer(
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	maxBatchSize int,
	logger *zap.Logger,
) *Server {
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}
	s := &Server{
		documents:    documents,
		search:       search,
		health:       health,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimensionMismatch),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, codeTimeout),
	}
	return s
}

// Register mounts all routes on the given router. Middleware is applied by
// the caller before registration.
func (s *Server) Register(r chi.Router) {
	r.Post("/documents", s.insertDocuments)
	r.Delete("/documents", s.clearDocuments)
	r.Post("/documents/query/delete", s.deleteByQuery)
	r.Get("/documents/{id}", s.getDocument)
	r.Patch("/documents/{id}", s.patchDocument)
	r.Delete("/documents/{id}", s.deleteDocument)
	r.Get("/stats", s.stats)
	r.Post("/search", s.searchText)
	r.Post("/search/lexical", s.searchLexical)
	r.Post("/search/vector", s.searchVector)
	r.Post("/search/hybrid", s.searchHybrid)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// insertDocuments handles POST /documents.
func (s *Server) insertDocuments(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", s.maxBatchSize))
		return
	}

	ids, err := s.documents.Insert(r.Context(), draftsFromWire(req.Documents))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, insertResponse{IDs: ids, Count: len(ids)})
}

// getDocument handles GET /documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToWire(&doc))
}

// patchDocument handles PATCH /documents/{id}.
func (s *Server) patchDocument(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Update(r.Context(), chi.URLParam(r, "id"), documentuc.Patch{
		Content:  req.Content,
		Metadata: req.Metadata,
		Vector:   req.Vector,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToWire(&doc))
}

// deleteDocument handles DELETE /documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteByQuery handles POST /documents/query/delete.
func (s *Server) deleteByQuery(w http.ResponseWriter, r *http.Request) {
	var req deleteByQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Filter) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"filter is required; use DELETE /documents to clear the store")
		return
	}

	filter, err := filterFromWire(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	deleted, err := s.documents.DeleteByFilter(r.Context(), filter)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteByQueryResponse{Deleted: deleted})
}

// clearDocuments handles DELETE /documents.
func (s *Server) clearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Clear(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// stats handles GET /stats.
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.documents.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalDocuments: st.TotalDocuments,
		Dimensions:     st.Dimensions,
	})
}

// searchText handles POST /search.
func (s *Server) searchText(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	filter, err := filterFromWire(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	sreq, err := request.NewTextSearch(
		req.Query, req.Limit, req.Threshold, filter,
		includeFromWire(req.IncludeContent, req.IncludeMetadata, req.IncludeVectors),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.Search(r.Context(), &sreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsToWire(results, (*result.Result).Similarity))
}

// searchLexical handles POST /search/lexical.
func (s *Server) searchLexical(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	filter, err := filterFromWire(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	sreq, err := request.NewTextSearch(
		req.Query, req.Limit, req.Threshold, filter,
		includeFromWire(req.IncludeContent, req.IncludeMetadata, req.IncludeVectors),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.SearchLexical(r.Context(), &sreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsToWire(results, (*result.Result).TextRank))
}

// searchVector handles POST /search/vector.
func (s *Server) searchVector(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	filter, err := filterFromWire(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	sreq, err := request.NewVectorSearch(
		req.Vector, req.Limit, req.Threshold, filter,
		includeFromWire(req.IncludeContent, req.IncludeMetadata, req.IncludeVectors),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.SearchByVector(r.Context(), &sreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsToWire(results, (*result.Result).Similarity))
}

// searchHybrid handles POST /search/hybrid.
func (s *Server) searchHybrid(w http.ResponseWriter, r *http.Request) {
	var req hybridSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filter, err := filterFromWire(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	hreq, err := request.NewHybrid(
		req.Query, req.Limit, req.TextWeight, req.VectorWeight, filter,
		includeFromWire(req.IncludeContent, req.IncludeMetadata, req.IncludeVectors),
		req.AllowPartial,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.HybridSearch(r.Context(), &hreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsToWire(results, (*result.Result).FusedScore))
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) decodeSearch(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return searchRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrDimensionMismatch,
		domain.ErrValidation,
		domain.ErrInvalidFilter,
		domain.ErrEmbeddingProvider,
		domain.ErrTimeout,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
