package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
)

type samplePayload struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","extra":1}`))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong"}`))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["name"] != "must be at most 5" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestSanitizeStringKeepsRunesIntact(t *testing.T) {
	if got := SanitizeString("  Café de Mocoa  ", 4); got != "Café" {
		t.Fatalf("expected Café, got %q", got)
	}
	if got := SanitizeString(" Miel ", 0); got != "Miel" {
		t.Fatalf("expected Miel, got %q", got)
	}
}

type nestedPayload struct {
	URLs []string `json:"image_urls" validate:"max=3,dive,url"`
}

func TestDecodeJSONBodyReportsNestedPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"image_urls":["https://cdn.origen.co/a.jpg","not a url"]}`))
	var payload nestedPayload
	typed := pkgerrors.As(DecodeJSONBody(req, &payload))
	if typed == nil {
		t.Fatal("expected typed error")
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["image_urls[1]"] != "must be a valid url" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestDecodeJSONBodyRejectsTrailingAndEmptyBodies(t *testing.T) {
	for _, body := range []string{`{"name":"ok"}{"name":"again"}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var payload samplePayload
		if err := DecodeJSONBody(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("body %q: expected validation error, got %v", body, err)
		}
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	big := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	var payload samplePayload
	typed := pkgerrors.As(DecodeJSONBody(req, &payload))
	if typed == nil || typed.Message() != "request body too large" {
		t.Fatalf("expected body too large error, got %v", typed)
	}
}
