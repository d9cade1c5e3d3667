package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type samplePayload struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"widget","quantity":3}`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Name != "widget" || payload.Quantity != 3 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDecodeJSONBodyReportsFieldNames(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity":0}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if _, ok := details["name"]; !ok {
		t.Fatalf("expected json field name in details, got %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","quantity":1,"extra":true}`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=25", nil)
	value, err := ParseQueryInt(req, "limit", 10, 1, 100)
	if err != nil || value != 25 {
		t.Fatalf("expected 25, got %d (%v)", value, err)
	}

	req = httptest.NewRequest("GET", "/", nil)
	value, err = ParseQueryInt(req, "limit", 10, 1, 100)
	if err != nil || value != 10 {
		t.Fatalf("expected default 10, got %d (%v)", value, err)
	}

	req = httptest.NewRequest("GET", "/?limit=5000", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected range error")
	}

	req = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
}

func TestParseQueryUUID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	id, err := ParseQueryUUID(req, "category_id")
	if err != nil || id != nil {
		t.Fatalf("expected nil for absent param, got %v (%v)", id, err)
	}

	req = httptest.NewRequest("GET", "/?category_id=nope", nil)
	if _, err := ParseQueryUUID(req, "category_id"); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
}

func TestParseQueryTime(t *testing.T) {
	req := httptest.NewRequest("GET", "/?since=2026-01-02T15:04:05Z", nil)
	value, err := ParseQueryTime(req, "since")
	if err != nil || value.IsZero() {
		t.Fatalf("expected parsed time, got %v (%v)", value, err)
	}

	req = httptest.NewRequest("GET", "/?since=yesterday", nil)
	if _, err := ParseQueryTime(req, "since"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}
