// Package handlers exposes the ClientSync gateway as a JSON API.
package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/auth"
	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/dates"
	"github.com/diewo77/clientsync/internal/services"
)

func currentUser(r *http.Request) string {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// writeServiceError maps gateway errors onto status codes. Anything not
// recognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, dates.ErrInvalidFormat):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"due_date": "invalid_format"})
	case errors.Is(err, services.ErrNoSession):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, services.ErrIdentityMismatch):
		httpx.JSONError(w, http.StatusForbidden, "identity_mismatch", nil)
	case errors.Is(err, services.ErrEmailTaken):
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func decodeOrReject(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}
