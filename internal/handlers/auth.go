package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/auth"
	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/services"
)

type AuthHandler struct {
	svc *services.DashboardService
	log *zap.Logger
}

func NewAuthHandler(svc *services.DashboardService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register mounts the signup, login and logout endpoints.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if !decodeOrReject(w, r, &in) {
		return
	}
	user, err := h.svc.RegisterUser(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	token := auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeOrReject(w, r, &in) {
		return
	}
	user, err := h.svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	token := auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

//revive:disable-next-line:unused-parameter
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
