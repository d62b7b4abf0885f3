package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/services"
)

type ClientHandler struct {
	svc *services.DashboardService
	log *zap.Logger
}

func NewClientHandler(svc *services.DashboardService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{svc: svc, log: log}
}

// List serves ?q= search, ?status=active and ?limit=.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var (
		clients []models.Client
		err     error
	)
	switch {
	case q != "":
		clients, err = h.svc.SearchClients(r.Context(), q, uid)
	case r.URL.Query().Get("status") == string(models.ClientActive):
		clients, err = h.svc.ListActiveClients(r.Context(), uid)
	default:
		clients, err = h.svc.ListClients(r.Context(), uid, httpx.QueryInt(r, "limit", 0))
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if !decodeOrReject(w, r, &in) {
		return
	}
	c, err := h.svc.CreateClient(r.Context(), in, currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetClient(r.Context(), r.PathValue("id"), currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.ClientPatch
	if !decodeOrReject(w, r, &patch) {
		return
	}
	c, err := h.svc.UpdateClient(r.Context(), r.PathValue("id"), patch, currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete removes the client together with its tasks.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteClientWithTasks(r.Context(), r.PathValue("id"), currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "deletedTasks": n})
}
