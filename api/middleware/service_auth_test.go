package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServiceAuthRequiresMatchingToken(t *testing.T) {
	handler := ServiceAuth("s3cret", nil)(okHandler())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"prefix", "s3cre", http.StatusUnauthorized},
		{"match", "s3cret", http.StatusOK},
		{"match with spaces", "  s3cret ", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/v1/products/owner-status", nil)
			if tt.header != "" {
				req.Header.Set(ServiceTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestServiceAuthOpenWhenUnconfigured(t *testing.T) {
	handler := ServiceAuth("", nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/internal/v1/products/owner-status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open route, got %d", rec.Code)
	}
}
