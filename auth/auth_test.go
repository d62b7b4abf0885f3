package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/clientsync/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	auth.SetSecret("test-secret")
	t.Cleanup(func() { auth.SetSecret("") })

	token := auth.IssueToken("3f1c2a9e-user")
	uid, ok := auth.VerifyToken(token)
	if !ok || uid != "3f1c2a9e-user" {
		t.Fatalf("VerifyToken(%q) = %q, %v", token, uid, ok)
	}
	if _, ok := auth.VerifyToken(token + "x"); ok {
		t.Fatal("tampered token accepted")
	}
	if _, ok := auth.VerifyToken("no-signature"); ok {
		t.Fatal("unsigned token accepted")
	}
}

func TestMiddleware_BearerAndCookie(t *testing.T) {
	auth.SetSecret("test-secret")
	t.Cleanup(func() { auth.SetSecret("") })

	var seen string
	h := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+auth.IssueToken("bearer-user"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "bearer-user" {
		t.Fatalf("bearer: got %q", seen)
	}

	rec := httptest.NewRecorder()
	auth.CreateSession(rec, "cookie-user")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	seen = ""
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "cookie-user" {
		t.Fatalf("cookie: got %q", seen)
	}
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := auth.RequireAuth(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	auth.SetUserVerifier(func(_ context.Context, uid string) bool { return uid == "alive" })
	t.Cleanup(func() { auth.SetUserVerifier(nil) })

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(auth.WithUserID(req.Context(), "deleted")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("removed user: expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(auth.WithUserID(req.Context(), "alive")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("verified user: expected 204, got %d", rec.Code)
	}
}
