package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/lexivec/lexivec/internal/domain"
	"github.com/lexivec/lexivec/internal/domain/metadata"
)

func testServer() *Server {
	return NewServer(nil, nil, nil, 0, zap.NewNop())
}

func TestHandleDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errorCode
	}{
		{"not found", domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound},
		{"dim mismatch", domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimensionMismatch},
		{"validation", domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
		{"invalid filter", domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter},
		{"provider", domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout, codeTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, codeInternalError},
	}

	srv := testServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.handleDomainError(rr, fmt.Errorf("op failed: %w", tt.err))

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}

			var resp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleDomainError_HidesInternals(t *testing.T) {
	srv := testServer()
	rr := httptest.NewRecorder()
	srv.handleDomainError(rr, fmt.Errorf("dial redis 10.0.0.3: connection refused"))

	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Message != "internal error" {
		t.Errorf("unexpected message leaked: %q", resp.Message)
	}
}

func TestSearchRequest_ThresholdSetVsUnset(t *testing.T) {
	var set searchRequest
	if err := json.Unmarshal([]byte(`{"query":"q","threshold":0}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if set.Threshold == nil || *set.Threshold != 0 {
		t.Error("an explicit zero threshold must decode as set")
	}

	var unset searchRequest
	if err := json.Unmarshal([]byte(`{"query":"q"}`), &unset); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if unset.Threshold != nil {
		t.Error("an omitted threshold must decode as nil")
	}
}

func TestFilterFromWire(t *testing.T) {
	f, err := filterFromWire([]filterCondition{
		{Path: "category", Value: metadata.String("science")},
		{Path: "tags", Op: "contains", Value: metadata.String("physics")},
		{Path: "year", Op: "eq", Value: metadata.Number(1979)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conds := f.Conditions()
	if len(conds) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(conds))
	}
	if conds[0].Op() != metadata.OpEq {
		t.Errorf("default op should be eq, got %d", conds[0].Op())
	}
	if conds[1].Op() != metadata.OpContains {
		t.Errorf("expected contains op, got %d", conds[1].Op())
	}
}

func TestFilterFromWire_Empty(t *testing.T) {
	f, err := filterFromWire(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsEmpty() {
		t.Error("expected empty filter")
	}
}

func TestFilterFromWire_UnknownOp(t *testing.T) {
	_, err := filterFromWire([]filterCondition{
		{Path: "category", Op: "regex", Value: metadata.String("sci.*")},
	})
	if err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestFilterFromWire_InvalidCondition(t *testing.T) {
	_, err := filterFromWire([]filterCondition{
		{Path: "", Value: metadata.String("x")},
	})
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestIncludeFromWire_Defaults(t *testing.T) {
	inc := includeFromWire(nil, nil, nil)
	if !inc.Content || !inc.Metadata {
		t.Error("content and metadata should default to included")
	}
	if inc.Vectors {
		t.Error("vectors should default to excluded")
	}
}

func TestIncludeFromWire_Overrides(t *testing.T) {
	f, tr := false, true
	inc := includeFromWire(&f, &f, &tr)
	if inc.Content || inc.Metadata {
		t.Error("explicit false should disable content and metadata")
	}
	if !inc.Vectors {
		t.Error("explicit true should enable vectors")
	}
}
