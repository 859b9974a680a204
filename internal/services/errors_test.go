package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"garland/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrRender, "renderer", "render", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"renderer", "render", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", services.Wrap(services.ErrValidation, "render", "submit", "missing field", nil), http.StatusBadRequest},
		{"auth", services.ErrNotAuthenticated, http.StatusUnauthorized},
		{"not found", services.Wrap(services.ErrNotFound, "invite", "get", "unknown id", nil), http.StatusNotFound},
		{"unavailable", services.Wrap(services.ErrUnavailable, "catalog", "list", "store unreachable", nil), http.StatusServiceUnavailable},
		{"timeout", services.Wrap(services.ErrTimeout, "renderer", "render", "deadline", nil), http.StatusGatewayTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	err := services.Wrap(services.ErrUpload, "uploader", "upload", "rejected", nil)
	if kind := services.Kind(err); kind != "upload" {
		t.Fatalf("expected kind upload, got %q", kind)
	}
	if kind := services.Kind(errors.New("boom")); kind != "internal" {
		t.Fatalf("expected kind internal, got %q", kind)
	}
}
