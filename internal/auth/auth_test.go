package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrentUser(t *testing.T) {
	if got := CurrentUser(context.Background()); got != "" {
		t.Fatalf("anonymous context returned %q", got)
	}
	ctx := WithUser(context.Background(), "tesoureiro@igreja.org")
	if got := CurrentUser(ctx); got != "tesoureiro@igreja.org" {
		t.Fatalf("CurrentUser = %q", got)
	}
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "maria")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "maria" {
		t.Fatalf("user from header = %q", seen)
	}

	seen = "unset"
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != "" {
		t.Fatalf("anonymous request yielded %q", seen)
	}
}
