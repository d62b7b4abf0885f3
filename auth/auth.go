// Package auth implements HMAC-signed session cookies and bearer tokens
// carrying a user id, plus the middleware that places that id in the
// request context.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/clientsync/httpx"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")
	sessionTTL        = 14 * 24 * time.Hour
)

// UserVerifier validates that a token's user still exists.
type UserVerifier func(ctx context.Context, uid string) bool

var (
	mu       sync.RWMutex
	verifier UserVerifier
	secret   string
)

// SetUserVerifier configures the verifier used by RequireAuth. nil disables it.
func SetUserVerifier(v UserVerifier) {
	mu.Lock()
	verifier = v
	mu.Unlock()
}

// SetSecret overrides the signing secret. An empty value restores the
// SESSION_SECRET lookup.
func SetSecret(s string) {
	mu.Lock()
	secret = s
	mu.Unlock()
}

// Secret returns the configured secret, SESSION_SECRET, or a dev default.
func Secret() string {
	mu.RLock()
	s := secret
	mu.RUnlock()
	if s != "" {
		return s
	}
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(uid string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(uid))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// IssueToken returns the signed "uid.sig" token used by both the cookie and
// the Authorization header.
func IssueToken(userID string) string {
	return userID + "." + sign(userID)
}

// VerifyToken returns the user id carried by a valid token.
func VerifyToken(token string) (string, bool) {
	uid, sig, ok := strings.Cut(token, ".")
	if !ok || uid == "" || strings.Contains(sig, ".") {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(sign(uid))) {
		return "", false
	}
	return uid, true
}

// CreateSession sets the session cookie and returns the token it carries.
func CreateSession(w http.ResponseWriter, userID string) string {
	token := IssueToken(userID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
	return token
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the session cookie.
func ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return VerifyToken(c.Value)
}

// ParseBearer validates an "Authorization: Bearer <token>" header.
func ParseBearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", false
	}
	return VerifyToken(strings.TrimSpace(token))
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDCtxKey).(string)
	return id, ok && id != ""
}

// Middleware attaches the user id from a bearer token or session cookie.
// The bearer token wins when both are present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := ParseBearer(r)
		if !ok {
			uid, ok = ParseSession(r)
		}
		if ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 JSON when no verified user is in the context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		mu.RLock()
		v := verifier
		mu.RUnlock()
		if v != nil && !v(r.Context(), uid) {
			// Token refers to a removed user.
			ClearSession(w)
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
