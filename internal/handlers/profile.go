package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/services"
)

// maxAvatarForm bounds the multipart form kept in memory.
const maxAvatarForm = 8 << 20

type ProfileHandler struct {
	svc *services.DashboardService
	log *zap.Logger
}

func NewProfileHandler(svc *services.DashboardService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: log}
}

// Get returns the profile, or an empty one keyed by the user when none has
// been saved yet.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	p, err := h.svc.GetProfile(r.Context(), uid)
	if errors.Is(err, services.ErrNotFound) {
		httpx.JSON(w, http.StatusOK, &models.Profile{ID: uid})
		return
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if !decodeOrReject(w, r, &in) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), currentUser(r), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// UploadAvatar accepts a multipart form with an "avatar" file field.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarForm); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	f, hdr, err := r.FormFile("avatar")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"avatar": "required"})
		return
	}
	defer f.Close()
	url, err := h.svc.UploadAvatar(r.Context(), currentUser(r), hdr.Filename, f)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// ChangePassword updates the signed-in user's password. user_id, when
// given, must name the signed-in user.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   string `json:"user_id"`
		Password string `json:"password"`
	}
	if !decodeOrReject(w, r, &in) {
		return
	}
	uid := currentUser(r)
	target := in.UserID
	if target == "" {
		target = uid
	}
	if err := h.svc.UpdatePassword(r.Context(), uid, target, in.Password); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
