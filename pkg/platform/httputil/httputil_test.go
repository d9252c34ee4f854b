package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "lockpass/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := map[dErrors.Code]int{
			dErrors.CodeNotFound:    http.StatusNotFound,
			dErrors.CodeConflict:    http.StatusConflict,
			dErrors.CodeUnavailable: http.StatusServiceUnavailable,
			dErrors.CodeRateLimited: http.StatusTooManyRequests,
			dErrors.CodeValidation:  http.StatusBadRequest,
		}
		for code, want := range cases {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(code, "x"))
			if w.Code != want {
				t.Fatalf("code %s: expected status %d, got %d", code, want, w.Code)
			}
		}
	})

	t.Run("uncoded error maps to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, context.DeadlineExceeded)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500 for uncoded error, got %d", w.Code)
		}
	})
}

type testRequest struct {
	Name string `json:"name"`
}

func (r *testRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("valid body decodes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
		req, ok := DecodeAndPrepare[testRequest](w, r, nil, r.Context(), "req-1")
		if !ok || req.Name != "ok" {
			t.Fatalf("expected decoded request, got ok=%v req=%+v", ok, req)
		}
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		_, ok := DecodeAndPrepare[testRequest](w, r, nil, r.Context(), "req-2")
		if ok || w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed body, got ok=%v status=%d", ok, w.Code)
		}
	})

	t.Run("validation failure is surfaced", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		_, ok := DecodeAndPrepare[testRequest](w, r, nil, r.Context(), "req-3")
		if ok || w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid body, got ok=%v status=%d", ok, w.Code)
		}
	})
}
