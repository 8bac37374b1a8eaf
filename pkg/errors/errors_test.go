package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "datos inválidos", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "debes iniciar sesión"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "acceso denegado"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "recurso no encontrado"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflicto con el estado actual"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "operación no permitida en este estado", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "clave de idempotencia reutilizada", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "demasiadas solicitudes, intenta más tarde", retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "error interno", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "servicio no disponible, intenta de nuevo", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeAndRetryable(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", New(CodeRateLimit, "too many orders"))
	if !IsCode(wrapped, CodeRateLimit) {
		t.Fatalf("expected rate limit code through wrapping")
	}
	if IsCode(wrapped, CodeValidation) {
		t.Fatalf("unexpected validation match")
	}
	if !Retryable(wrapped) {
		t.Fatalf("rate limit errors should be retryable")
	}
	if Retryable(New(CodeValidation, "bad phone")) {
		t.Fatalf("validation errors are not retryable")
	}
	if !Retryable(stdErrors.New("boom")) {
		t.Fatalf("untyped errors default to internal (retryable)")
	}
	if Retryable(nil) {
		t.Fatalf("nil error is not retryable")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection refused"), "db: insert order request")
	want := "DEPENDENCY_ERROR: db: insert order request: connection refused"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if got := New(CodeNotFound, "product not found").Error(); got != "NOT_FOUND: product not found" {
		t.Fatalf("unexpected message %q", got)
	}
}
