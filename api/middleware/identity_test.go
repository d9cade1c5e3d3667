package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestIdentityInjectsUserID(t *testing.T) {
	userID := uuid.NewString()
	var seen string
	handler := Identity(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("X-User-Id", userID)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != userID {
		t.Fatalf("expected user id %s in context, got %q", userID, seen)
	}
}

func TestIdentityOptional(t *testing.T) {
	called := false
	handler := Identity(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if got := UserIDFromContext(r.Context()); got != "" {
			t.Fatalf("expected empty user id, got %q", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatalf("expected handler to run without the header")
	}
}

func TestIdentityRejectsMalformedHeader(t *testing.T) {
	handler := Identity(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("X-User-Id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed header, got %d", rec.Code)
	}
}
